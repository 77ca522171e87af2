package scrape

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

// ScholarExtractor reads a Google Scholar citations page.
//
// The profile name lives in #gsc_prf_in. The citation table renders its
// numbers as td.gsc_rsb_std cells; the first three in document order are
// total citations, h-index, and i10-index.
type ScholarExtractor struct{}

func (ScholarExtractor) Source() config.Source { return config.SourceGoogleScholar }

func (ScholarExtractor) Extract(body []byte) (Metrics, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metrics{}, fmt.Errorf("parse scholar page: %w", err)
	}

	var m Metrics
	m.Name = strings.TrimSpace(doc.Find("#gsc_prf_in").First().Text())

	var cells []int
	doc.Find("td.gsc_rsb_std").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil {
			return true // skip non-numeric cells
		}
		cells = append(cells, n)
		return len(cells) < 3
	})

	if m.Name == "" && len(cells) == 0 {
		return Metrics{}, fmt.Errorf("scholar markup not found")
	}
	if len(cells) > 0 {
		m.Citations = cells[0]
	}
	if len(cells) > 1 {
		m.HIndex = cells[1]
	}
	if len(cells) > 2 {
		m.I10Index = cells[2]
	}
	return m, nil
}
