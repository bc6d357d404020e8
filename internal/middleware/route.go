package middleware

import "github.com/gin-gonic/gin"

// Route registers handler behind an ordered list of guards. Each guard
// either aborts the chain with its own response or lets the next one run.
func Route(r gin.IRoutes, method, path string, guards []gin.HandlerFunc, handler gin.HandlerFunc) {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	chain = append(chain, guards...)
	chain = append(chain, handler)
	r.Handle(method, path, chain...)
}
