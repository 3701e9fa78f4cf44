package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/kanban"
	"taskboard/internal/models"
)

type createBoardRequest struct {
	Title   string       `json:"title"`
	Members []int64      `json:"members"`
	DueDate *models.Date `json:"due_date"`
}

type updateBoardRequest struct {
	Title   *string                   `json:"title"`
	Members *[]int64                  `json:"members"`
	DueDate kanban.Field[models.Date] `json:"due_date"`
}

type boardUpdateResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	DueDate     *models.Date         `json:"due_date"`
	OwnerData   models.UserSummary   `json:"owner_data"`
	MembersData []models.UserSummary `json:"members_data"`
}

func (s *Server) handleListBoards(c *gin.Context) {
	boards, err := s.svc.ListBoards(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if boards == nil {
		boards = []models.Board{}
	}
	respondSuccess(c, http.StatusOK, boards)
}

func (s *Server) handleCreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	board, err := s.svc.CreateBoard(c.Request.Context(), currentUser(c), kanban.BoardInput{
		Title:     req.Title,
		MemberIDs: req.Members,
		DueDate:   req.DueDate,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, board)
}

func (s *Server) handleGetBoard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	detail, err := s.svc.GetBoard(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, detail)
}

func (s *Server) handleUpdateBoard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req updateBoardRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	updated, err := s.svc.UpdateBoard(c.Request.Context(), currentUser(c), id, kanban.BoardPatch{
		Title:     req.Title,
		MemberIDs: req.Members,
		DueDate:   req.DueDate,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	members := updated.Members
	if members == nil {
		members = []models.UserSummary{}
	}
	respondSuccess(c, http.StatusOK, boardUpdateResponse{
		ID:          updated.Board.ID,
		Title:       updated.Board.Title,
		DueDate:     updated.Board.DueDate,
		OwnerData:   updated.Owner,
		MembersData: members,
	})
}

func (s *Server) handleDeleteBoard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.svc.DeleteBoard(c.Request.Context(), currentUser(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
