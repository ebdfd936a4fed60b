// Package pages renders the site's HTML views.
package pages

import (
	"embed"
	"html/template"
	"net/http"

	"hirehub/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded views; each is addressed by file name.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

const roleAdmin = "admin"

// RegisterRoutes mounts public pages on r and role pages behind guard.
func RegisterRoutes(r gin.IRouter, guard gin.HandlerFunc) {
	r.GET("/", render("welcome.html", "Welcome"))
	r.GET("/register", render("register.html", "Register"))
	r.GET("/login", render("login.html", "Log in"))

	protected := r.Group("/")
	protected.Use(guard)
	protected.GET("/home", render("home.html", "Home"))
	protected.GET("/homeuser", homeUser)
	protected.GET("/admin", admin)
}

func render(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, view(c, title))
	}
}

func view(c *gin.Context, title string) gin.H {
	state := session.FromContext(c.Request.Context())
	return gin.H{
		"Title": title,
		"User":  state.User,
	}
}

func homeUser(c *gin.Context) {
	if session.FromContext(c.Request.Context()).Role() == roleAdmin {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.HTML(http.StatusOK, "homeuser.html", view(c, "Home"))
}

func admin(c *gin.Context) {
	if session.FromContext(c.Request.Context()).Role() != roleAdmin {
		c.Redirect(http.StatusFound, "/homeuser")
		return
	}
	c.HTML(http.StatusOK, "adminuser.html", view(c, "Admin"))
}
