package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/kanban"
	"taskboard/internal/models"
	"taskboard/internal/util"
)

const userContextKey = "taskboard.user"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

func newSessionResponse(session kanban.Session) sessionResponse {
	return sessionResponse{
		Token:    session.Token,
		Fullname: session.User.Fullname,
		Email:    session.User.Email,
		UserID:   session.User.ID,
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var req kanban.Registration
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.svc.Register(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, newSessionResponse(session))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, newSessionResponse(session))
}

// requireAuth resolves the bearer token and stores the user on the context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.svc.Authenticate(c.Request.Context(), tokenFromHeader(c.GetHeader("Authorization")))
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// tokenFromHeader accepts both "Bearer <token>" and "Token <token>".
func tokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	}
	return ""
}

func currentUser(c *gin.Context) models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(models.User); ok {
			return user
		}
	}
	return models.User{}
}

func (s *Server) handleEmailCheck(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		s.respondError(c, util.NewInvalidArgumentErrorf("email: query parameter is required"))
		return
	}

	user, err := s.svc.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}
