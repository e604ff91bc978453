package server

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/umputun/ideascope/pkg/domain"
)

// rssDoc is an RSS 2.0 document
type rssDoc struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Atom    string      `xml:"xmlns:atom,attr"`
	Channel *rssChannel `xml:"channel"`
}

type rssChannel struct {
	XMLName       xml.Name   `xml:"channel"`
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Description   string     `xml:"description"`
	AtomLink      *atomLink  `xml:"http://www.w3.org/2005/Atom link"`
	LastBuildDate string     `xml:"lastBuildDate"`
	Items         []*rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

// rssHandler serves ideas of the last finished run as RSS feed, min_score and limit work as for ideas
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	minScore, limit, err := ideasParams(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	baseURL := "http://" + r.Host
	rss, err := generateRSS(filterIdeas(s.lastRecords(), minScore, limit), baseURL, minScore, time.Now())
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[WARN] failed to write RSS response: %v", err)
	}
}

// generateRSS makes RSS 2.0 document with one item per idea
func generateRSS(records []domain.IdeaRecord, baseURL string, minScore float64, now time.Time) (string, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	items := make([]*rssItem, 0, len(records))
	for _, rec := range records {
		desc := fmt.Sprintf("Confidence: %.2f - %s\n\n%s\n\nAudience: %s\nComplexity: %s, market: %s",
			rec.ConfidenceScore, rec.ProblemSummary, rec.IdeaDescription, rec.TargetAudience, rec.Complexity, rec.MarketSize)
		items = append(items, &rssItem{
			Title:       fmt.Sprintf("[%.2f] %s", rec.ConfidenceScore, rec.IdeaName),
			Link:        rec.URL,
			GUID:        rec.Community + "/" + rec.PostID,
			Description: desc,
			PubDate:     rec.GeneratedAt.Format(time.RFC1123Z),
			Categories:  []string{rec.Category, rec.Community},
		})
	}

	feed := &rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &rssChannel{
			Title:         fmt.Sprintf("ideascope - startup ideas (confidence ≥ %.2f)", minScore),
			Link:          baseURL + "/",
			Description:   "Startup ideas generated from forum pain points",
			AtomLink:      &atomLink{Href: baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}
