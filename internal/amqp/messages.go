package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportRequestMessage asks the report worker to generate one AI report.
// It carries only the mode and the date window; the worker loads the
// transactions from the database so the queue never holds financial data.
type ReportRequestMessage struct {
	Mode        string    `json:"mode"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReportRequestMessage creates a request for the given mode and window.
// Dates are YYYY-MM-DD strings; empty means the full stored range.
func NewReportRequestMessage(mode, startDate, endDate string) *ReportRequestMessage {
	return &ReportRequestMessage{
		Mode:        mode,
		StartDate:   startDate,
		EndDate:     endDate,
		RequestedAt: time.Now(),
	}
}

func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Mode == "" {
		return nil, fmt.Errorf("report request without mode")
	}
	return &msg, nil
}
