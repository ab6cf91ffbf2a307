package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab/internal/session"
)

// AccountHandler renders the signed-in user's account page
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// Show handles GET /conta - the account page. The route group's guard has
// already ensured a user is present.
func (h *AccountHandler) Show(c *gin.Context) {
	sess := session.FromGin(c)
	user := sess.User()
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "account.html", gin.H{
		"Title": "Minha Conta",
		"User":  user,
	})
}
