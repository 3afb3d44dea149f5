// Package web serves the browser client: one page, its stylesheet and script.
package web

import (
	"embed"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

//go:embed static
var static embed.FS

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
}

func RegisterRoutes(r gin.IRouter) {
	r.GET("/", serve("index.html"))
	r.GET("/index.html", serve("index.html"))
	r.GET("/style.css", serve("style.css"))
	r.GET("/app.js", serve("app.js"))
}

func serve(name string) gin.HandlerFunc {
	data, err := static.ReadFile("static/" + name)
	if err != nil {
		panic("web: missing embedded asset " + name)
	}
	contentType := contentTypes[path.Ext(name)]
	return func(c *gin.Context) {
		c.Data(http.StatusOK, contentType, data)
	}
}
