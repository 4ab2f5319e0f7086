package server

import (
	"net/http"

	"videoChat/core"
	"videoChat/youtube"
)

type processRequest struct {
	VideoURL           string `json:"video_url"`
	LanguageCode       string `json:"language_code"`
	TranslateToEnglish *bool  `json:"translate_to_english"`
}

type transcriptsRequest struct {
	VideoURL string `json:"video_url"`
}

type chatRequest struct {
	VideoID  string `json:"video_id"`
	Question string `json:"question"`
}

type searchRequest struct {
	Query    string   `json:"query"`
	VideoIDs []string `json:"video_ids"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Video transcript chat API is running",
		"version": "1.0",
	})
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	var req transcriptsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	videoID, err := youtube.ExtractVideoID(req.VideoURL)
	if err != nil {
		writeError(w, err)
		return
	}
	if !youtube.ValidateVideoID(videoID) {
		writeError(w, core.E(core.KindInvalidInput, "invalid video ID extracted from URL"))
		return
	}
	transcripts, err := s.source.ListTranscripts(videoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":               true,
		"video_id":              videoID,
		"available_transcripts": transcripts,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}
	videoID, err := youtube.ExtractVideoID(req.VideoURL)
	if err != nil {
		writeError(w, err)
		return
	}
	if !youtube.ValidateVideoID(videoID) {
		writeError(w, core.E(core.KindInvalidInput, "invalid video ID extracted from URL"))
		return
	}

	lang := req.LanguageCode
	if lang == "" {
		lang = "en"
	}
	translate := true
	if req.TranslateToEnglish != nil {
		translate = *req.TranslateToEnglish
	}

	if _, ok := s.manager.Get(videoID); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"video_id": videoID,
			"message":  "Video already processed and ready for Q&A",
		})
		return
	}

	if _, err := s.manager.ProcessVideo(r.Context(), videoID, lang, translate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"video_id": videoID,
		"message":  "Video processed successfully with " + lang + " transcript and ready for Q&A",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	answer, err := s.manager.Ask(r.Context(), req.VideoID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"answer":   answer,
		"video_id": req.VideoID,
	})
}

func (s *Server) handleChatTimestamps(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.manager.AskWithTimestamps(r.Context(), req.VideoID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	_, ready := s.manager.Get(videoID)
	msg := "Video not processed yet"
	if ready {
		msg = "Video is ready for Q&A"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"video_id": videoID,
		"is_ready": ready,
		"message":  msg,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if err := s.manager.Clear(videoID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Video " + videoID + " cleared from memory",
	})
}

func (s *Server) handleVideos(w http.ResponseWriter, _ *http.Request) {
	ids := s.manager.List()
	summaries := make(map[string]core.Analytics, len(ids))
	for _, id := range ids {
		if a, err := s.manager.Analytics(id); err == nil {
			summaries[id] = a
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"processed_videos": ids,
		"count":            len(ids),
		"video_summaries":  summaries,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.manager.Analytics(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	sentiment, err := s.manager.Sentiment(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sentiment)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.manager.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	results, searched := s.manager.SearchAcrossVideos(r.Context(), req.Query, req.VideoIDs)
	if results == nil {
		results = []core.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":               results,
		"total_videos_searched": searched,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	ids := s.manager.List()

	type videoEntry struct {
		VideoID   string               `json:"video_id"`
		Analytics core.Analytics       `json:"analytics"`
		Sentiment core.SentimentReport `json:"sentiment"`
		Status    string               `json:"status"`
	}

	videos := make([]videoEntry, 0, len(ids))
	var totalQuestions int64
	var totalWords int
	var processingTimes []float64

	for _, id := range ids {
		analytics, err := s.manager.Analytics(id)
		if err != nil {
			continue
		}
		sentiment, err := s.manager.Sentiment(id)
		if err != nil {
			continue
		}
		videos = append(videos, videoEntry{
			VideoID:   id,
			Analytics: analytics,
			Sentiment: sentiment,
			Status:    "ready",
		})
		totalQuestions += analytics.InteractionStats.TotalQuestions
		totalWords += analytics.VideoStats.WordCount
		processingTimes = append(processingTimes, analytics.VideoStats.ProcessingTime)
	}

	avgProcessing := 0.0
	if len(processingTimes) > 0 {
		for _, t := range processingTimes {
			avgProcessing += t
		}
		avgProcessing /= float64(len(processingTimes))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_videos": len(ids),
		"videos":       videos,
		"system_stats": map[string]any{
			"total_questions_asked": totalQuestions,
			"avg_processing_time":   avgProcessing,
			"total_words_processed": totalWords,
		},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.manager.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}
