package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// HealthClient implements stratus.HealthClient.
type HealthClient struct {
	httpClient *http.Client
}

// Get reads the service health report. The endpoint answers with either
// a flat object or an array of objects; both are normalized into a
// HealthReport.
func (c *HealthClient) Get(ctx context.Context) (*stratus.HealthReport, error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("reading health report: %w", err)
	}

	report, err := parseHealthReport(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading health report: %w", err)
	}

	return report, nil
}

func parseHealthReport(body []byte) (*stratus.HealthReport, error) {
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var rows []map[string]json.RawMessage

		err := json.Unmarshal(body, &rows)
		if err != nil {
			return nil, fmt.Errorf("parsing health response: %w", err)
		}

		return healthTable(rows), nil
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(body, &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing health response: %w", err)
	}

	report := &stratus.HealthReport{}

	for _, key := range sortedKeys(fields) {
		report.Fields = append(report.Fields, stratus.HealthField{
			Key:   key,
			Value: healthValue(fields[key]),
		})
	}

	return report, nil
}

func healthTable(rows []map[string]json.RawMessage) *stratus.HealthReport {
	report := &stratus.HealthReport{}

	if len(rows) == 0 {
		return report
	}

	report.Columns = sortedKeys(rows[0])

	for _, row := range rows {
		rendered := make(map[string]string, len(row))
		for key, value := range row {
			rendered[key] = healthValue(value)
		}

		report.Rows = append(report.Rows, rendered)
	}

	return report
}

// healthValue renders one JSON value for display, unquoting strings.
func healthValue(raw json.RawMessage) string {
	var s string

	err := json.Unmarshal(raw, &s)
	if err == nil {
		return s
	}

	return string(raw)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
