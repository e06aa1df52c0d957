// Package report derives a shortlisting report over finished interviews for a
// given job description.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talent-scout/scout/internal/ai"
	"github.com/talent-scout/scout/internal/records"
)

// Shortlister ranks interviewed candidates against a job description. The
// whole comparison happens in a single gateway call so candidates are scored
// relative to each other, not in isolation.
type Shortlister struct {
	gen    ai.Generator
	logger *zap.Logger
}

func NewShortlister(gen ai.Generator, log *zap.Logger) *Shortlister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shortlister{gen: gen, logger: log}
}

// Shortlist produces a Markdown report ranking the given candidates against
// the job description. At least one record and a non-empty description are
// required; there is no fallback here because the report is advisory and the
// recruiter can simply retry.
func (sl *Shortlister) Shortlist(ctx context.Context, jobDescription string, recs []*records.Record) (string, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return "", fmt.Errorf("job description must not be empty")
	}
	if len(recs) == 0 {
		return "", fmt.Errorf("no interview records to shortlist")
	}

	report, err := sl.gen.GenerateContent(ctx, buildShortlistPrompt(jobDescription, recs))
	if err != nil {
		return "", fmt.Errorf("generating shortlist report: %w", err)
	}
	if strings.TrimSpace(report) == "" {
		return "", fmt.Errorf("shortlist report came back empty")
	}

	sl.logger.Info("shortlist report generated", zap.Int("candidates", len(recs)))

	return strings.TrimSpace(report), nil
}

func buildShortlistPrompt(jobDescription string, recs []*records.Record) string {
	var b strings.Builder

	b.WriteString("You are an expert technical recruiter. Rank the interviewed candidates below against the job description and produce a shortlisting report.\n\n")
	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(jobDescription)
	b.WriteString("\n\nCANDIDATES:\n\n")

	for i, r := range recs {
		fmt.Fprintf(&b, "Candidate %d: %s\n", i+1, r.Candidate.FullName)
		fmt.Fprintf(&b, "Applied for: %s\n", r.Candidate.Position)
		fmt.Fprintf(&b, "Experience: %d years\n", r.Candidate.Experience)
		fmt.Fprintf(&b, "Declared stack: %s\n", strings.Join(r.Candidate.Skills, ", "))
		if r.Summary != nil {
			fmt.Fprintf(&b, "Interview assessment: %s\n", r.Summary.Assessment)
			fmt.Fprintf(&b, "Interview recommendation: %s\n", r.Summary.Recommendation)
		} else {
			b.WriteString("Interview assessment: not available\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Write a Markdown report with:\n")
	b.WriteString("1. A ranked shortlist, strongest candidate first, with a one-line justification each.\n")
	b.WriteString("2. A short section on notable gaps relative to the job description.\n")
	b.WriteString("Base the ranking only on the material above. Do not invent facts about the candidates.")

	return b.String()
}
