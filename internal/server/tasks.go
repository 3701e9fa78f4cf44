package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/kanban"
	"taskboard/internal/models"
)

type createTaskRequest struct {
	Board       int64                     `json:"board" binding:"required"`
	Title       string                    `json:"title"`
	Description *string                   `json:"description"`
	Status      models.TaskStatus         `json:"status"`
	Priority    models.TaskPriority       `json:"priority"`
	AssigneeID  kanban.Field[int64]       `json:"assignee_id"`
	ReviewerID  kanban.Field[int64]       `json:"reviewer_id"`
	DueDate     kanban.Field[models.Date] `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Status      *models.TaskStatus        `json:"status"`
	Priority    *models.TaskPriority      `json:"priority"`
	AssigneeID  kanban.Field[int64]       `json:"assignee_id"`
	ReviewerID  kanban.Field[int64]       `json:"reviewer_id"`
	DueDate     kanban.Field[models.Date] `json:"due_date"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	in := kanban.TaskInput{
		BoardID:    req.Board,
		Title:      req.Title,
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID.Value,
		ReviewerID: req.ReviewerID.Value,
		DueDate:    req.DueDate.Value,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	task, err := s.svc.CreateTask(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.svc.GetTask(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

func (s *Server) handleAssignedToMe(c *gin.Context) {
	tasks, err := s.svc.ListAssignedToMe(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nonNilTasks(tasks))
}

func (s *Server) handleReviewing(c *gin.Context) {
	tasks, err := s.svc.ListReviewing(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nonNilTasks(tasks))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req updateTaskRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.svc.UpdateTask(c.Request.Context(), currentUser(c), id, kanban.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ReviewerID:  req.ReviewerID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.svc.DeleteTask(c.Request.Context(), currentUser(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

func nonNilTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
