package llm

import (
	"context"
	"time"
)

// MockAnalyzer returns a fixed analysis after Delay. It stands in for a
// real provider when no API key is configured.
type MockAnalyzer struct {
	Delay time.Duration
}

func (m MockAnalyzer) AnalyzeCV(ctx context.Context, cvText string) (Analysis, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Analysis{}, Failed(ctx.Err())
		case <-t.C:
		}
	}
	return MockAnalysis(), nil
}

// MockAnalysis is the canned result of MockAnalyzer.
func MockAnalysis() Analysis {
	return Analysis{
		Name: "John Doe (Mock)",
		Role: "Senior Frontend Engineer",
		AboutMe: "A passionate senior frontend engineer with over 10 years of experience building modern, responsive web applications. " +
			"Proficient in React, TypeScript, and Tailwind CSS. Always eager to learn new technologies and contribute to team success.",
		Skills: []string{"React", "TypeScript", "Next.js", "Tailwind CSS", "Node.js", "UI/UX Design", "Agile Methodologies"},
	}
}

var _ CVAnalyzer = MockAnalyzer{}
