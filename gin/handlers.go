package gin

import (
	"net/http"
	"strconv"

	"github.com/fwojciec/mangaingest"
	"github.com/gin-gonic/gin"
)

type chaptersBody struct {
	ChapterNumbers []float64 `json:"chapterNumbers"`
}

// chapterResult is the wire form of one mangaingest.ChapterResult.
type chapterResult struct {
	ChapterNumber float64              `json:"chapterNumber"`
	Chapter       *mangaingest.Chapter `json:"chapter,omitempty"`
	Error         *errorBody           `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleCreateSeries(c *gin.Context) {
	var req mangaingest.SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, mangaingest.Errorf(mangaingest.EINVALID, "invalid JSON body"))
		return
	}

	series, err := s.ingester.IngestSeries(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, series)
}

func (s *Server) handleCreateChapters(c *gin.Context) {
	var body chaptersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, mangaingest.Errorf(mangaingest.EINVALID, "invalid JSON body"))
		return
	}

	seriesID := c.Param("id")
	results, err := s.ingester.IngestChapters(c.Request.Context(), mangaingest.ChaptersRequest{
		SeriesID:       seriesID,
		ChapterNumbers: body.ChapterNumbers,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]chapterResult, len(results))
	for i, r := range results {
		out[i] = chapterResult{ChapterNumber: r.Number, Chapter: r.Chapter}
		if r.Err != nil {
			out[i].Chapter = nil
			out[i].Error = &errorBody{Code: mangaingest.ErrorCode(r.Err), Message: mangaingest.ErrorMessage(r.Err)}
		}
	}
	c.JSON(http.StatusOK, gin.H{"seriesId": seriesID, "results": out})
}

func (s *Server) handleSimilar(c *gin.Context) {
	limit := mangaingest.DefaultSimilarLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSimilarLimit {
			s.respondError(c, mangaingest.Errorf(mangaingest.EINVALID, "limit must be between 1 and %d", MaxSimilarLimit))
			return
		}
		limit = n
	}

	edges, err := s.similarities.FindSimilar(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if edges == nil {
		edges = []*mangaingest.SimilarityEdge{}
	}
	c.JSON(http.StatusOK, gin.H{"seriesId": c.Param("id"), "similar": edges})
}

// respondError writes err with the status its code maps to. Internal errors
// are logged and reported without their cause.
func (s *Server) respondError(c *gin.Context, err error) {
	code := mangaingest.ErrorCode(err)
	status := StatusCode(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("http request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: mangaingest.ErrorMessage(err)}})
}

// StatusCode maps an application error code to an HTTP status.
func StatusCode(code string) int {
	switch code {
	case mangaingest.ECONFLICT:
		return http.StatusConflict
	case mangaingest.EINVALID, mangaingest.EUNSUPPORTED:
		return http.StatusBadRequest
	case mangaingest.ENOTFOUND:
		return http.StatusNotFound
	case mangaingest.EEXTRACTION, mangaingest.ETIMEOUT, mangaingest.EUPLOAD, mangaingest.EBLOCKED:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
