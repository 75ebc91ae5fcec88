package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

type testSuite struct {
	XMLName  xml.Name   `xml:"testsuite"`
	Tests    int        `xml:"tests,attr"`
	Failures int        `xml:"failures,attr"`
	Cases    []testCase `xml:"testcase"`
}

type testCase struct {
	Name    string    `xml:"name,attr"`
	Failure *testFail `xml:"failure,omitempty"`
}

type testFail struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

func WriteJUnit(summary RunSummary, path string) error {
	suite := testSuite{Tests: len(summary.Checks)}
	for _, c := range summary.Checks {
		if c.GateTriggered {
			suite.Failures++
			suite.Cases = append(suite.Cases, testCase{
				Name: c.TestName,
				Failure: &testFail{
					Message: string(c.Diff.Status),
					Body: fmt.Sprintf("status=%s score_diff=%+.1f output_similarity=%.2f tool_changes=%d",
						c.Diff.Status, c.Diff.ScoreDiff, c.Diff.OutputSimilarity(), len(c.Diff.ToolDiffs)),
				},
			})
			continue
		}
		suite.Cases = append(suite.Cases, testCase{Name: c.TestName})
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
