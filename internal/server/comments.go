package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleListComments(c *gin.Context) {
	taskID, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	comments, err := s.svc.ListComments(c.Request.Context(), currentUser(c), taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	respondSuccess(c, http.StatusOK, comments)
}

func (s *Server) handleAddComment(c *gin.Context) {
	taskID, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req commentRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	comment, err := s.svc.AddComment(c.Request.Context(), currentUser(c), taskID, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	taskID, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.svc.DeleteComment(c.Request.Context(), currentUser(c), taskID, commentID); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
