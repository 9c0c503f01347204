package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/export"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/mastery"
	"github.com/abhisek/mathdaily/internal/store"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type generateRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Count       int    `json:"count"`
	UnitID      *int   `json:"unitId"`
	SchoolLevel string `json:"schoolLevel"`
	Grade       int    `json:"grade"`
}

type submitRequest struct {
	UserID   string   `json:"userId" binding:"required"`
	Accuracy *float64 `json:"accuracy" binding:"required"`
	UnitID   *int     `json:"unitId"`
}

type analyzeRequest struct {
	UserID         string `json:"userId" binding:"required"`
	ProblemID      string `json:"problemId"`
	UserAnswer     string `json:"userAnswer" binding:"required"`
	CorrectAnswer  string `json:"correctAnswer"`
	QuestionText   string `json:"questionText"`
	ResponseTimeMs int    `json:"responseTimeMs"`
}

type rewriteRequest struct {
	QuestionText string `json:"questionText" binding:"required"`
}

type chatRequest struct {
	Messages       []llm.Message `json:"messages"`
	ProblemContext string        `json:"problemContext"`
}

type topicsRequest struct {
	Topics []string `json:"topics"`
}

type studentResponse struct {
	ID              string                `json:"id"`
	SchoolLevel     string                `json:"school_level"`
	Grade           int                   `json:"grade"`
	RecentAccuracy  float64               `json:"recent_accuracy"`
	DifficultyLevel int                   `json:"difficulty_level"`
	WeakTopics      []string              `json:"weak_topics"`
	CurrentTopics   []string              `json:"current_topics"`
	Mastery         []mastery.UnitMastery `json:"mastery,omitempty"`
}

func newStudentResponse(st *store.Student, m []mastery.UnitMastery) studentResponse {
	return studentResponse{
		ID:              st.ID,
		SchoolLevel:     st.SchoolLevel,
		Grade:           st.Grade,
		RecentAccuracy:  st.RecentAccuracy,
		DifficultyLevel: st.DifficultyLevel,
		WeakTopics:      nonNil(st.WeakTopics),
		CurrentTopics:   nonNil(st.CurrentTopics),
		Mastery:         m,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) health(c *gin.Context) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

func (s *Server) curriculum(c *gin.Context) {
	grade, err := strconv.Atoi(c.Param("grade"))
	if err != nil {
		badRequest(c, "grade must be a number")
		return
	}
	chapters, err := s.svc.Catalog(c.Request.Context(), c.Param("level"), grade)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chapters)
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	problems, err := s.svc.PlanAndGenerate(c.Request.Context(), worksheet.GenerateRequest{
		StudentID:   req.UserID,
		Count:       req.Count,
		UnitID:      req.UnitID,
		SchoolLevel: req.SchoolLevel,
		Grade:       req.Grade,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, problems)
}

func (s *Server) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.svc.RecordSubmissionAccuracy(c.Request.Context(), req.UserID, *req.Accuracy, req.UnitID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) analyzeError(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	rec, err := s.svc.AnalyzeWrongAnswer(c.Request.Context(), diagnosis.Input{
		StudentID:       req.UserID,
		ProblemID:       req.ProblemID,
		SubmittedAnswer: req.UserAnswer,
		CorrectAnswer:   req.CorrectAnswer,
		QuestionText:    req.QuestionText,
		ResponseTimeMs:  req.ResponseTimeMs,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) rewrite(c *gin.Context) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"original":  req.QuestionText,
		"rewritten": s.svc.Rewrite(c.Request.Context(), req.QuestionText),
	})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	reply, err := s.svc.Tutor(c.Request.Context(), req.Messages, req.ProblemContext)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, reply)
}

func (s *Server) checkAI(c *gin.Context) {
	res, err := s.svc.CheckAI(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":  "ERROR",
			"message": msg,
			"kind":    llm.ErrorKind(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "AI connection successful",
		"model":       res.Model,
		"ai_response": res.Reply,
		"latency_ms":  res.Latency.Milliseconds(),
	})
}

func (s *Server) student(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := s.svc.Student(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	m, err := s.svc.Mastery(ctx, st.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newStudentResponse(st, m))
}

func (s *Server) setTopics(c *gin.Context) {
	var req topicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, err := s.svc.SetCurrentTopics(c.Request.Context(), c.Param("id"), req.Topics)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newStudentResponse(st, nil))
}

func (s *Server) export(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		badRequest(c, "userId is required")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(worksheet.DefaultCount)))
	if err != nil || limit < 1 || limit > 200 {
		badRequest(c, "limit must be between 1 and 200")
		return
	}

	problems, err := s.svc.History(c.Request.Context(), userID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("%s %s", userID, time.Now().Format("2006-01-02"))
	if err := export.WriteXLSX(&buf, title, problems); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="worksheet-%s.xlsx"`, time.Now().Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
