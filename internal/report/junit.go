package report

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/droidworld/droideval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation batch.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one episode.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents a failed episode.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts an EvaluationBatch to JUnit XML format, one
// testcase per episode. The output carries no timestamps so it stays
// deterministic for a given batch.
func ConvertToJUnit(batch *models.EvaluationBatch) *JUnitTestSuites {
	summary := batch.Summary

	suite := JUnitTestSuite{
		Name:     batch.TaskPrompt,
		Tests:    summary.TotalEpisodes,
		Failures: summary.FailedEpisodes,
		Time:     summary.TotalTime,
		Properties: []JUnitProperty{
			{Name: "task", Value: batch.TaskPrompt},
			{Name: "requested_episodes", Value: fmt.Sprintf("%d", batch.RequestedEpisodes)},
			{Name: "success_rate", Value: fmt.Sprintf("%.4f", summary.SuccessRate)},
			{Name: "cancelled", Value: fmt.Sprintf("%t", batch.Cancelled)},
		},
	}

	for _, res := range batch.EpisodeResults {
		suite.TestCases = append(suite.TestCases, convertEpisode(batch.TaskPrompt, res))
	}

	return &JUnitTestSuites{
		Tests:      summary.TotalEpisodes,
		Failures:   summary.FailedEpisodes,
		Time:       summary.TotalTime,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertEpisode(task string, res models.EpisodeResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      fmt.Sprintf("episode-%d", res.EpisodeID),
		Classname: task,
		Time:      res.Duration,
	}

	if !res.Success {
		msg := res.Detail
		if msg == "" {
			msg = "episode failed"
		}
		tc.Failure = &JUnitFailure{
			Message: msg,
			Type:    "EpisodeFailure",
			Body:    res.Error,
		}
	}

	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(batch *models.EvaluationBatch, path string) error {
	suites := ConvertToJUnit(batch)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
