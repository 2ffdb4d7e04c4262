package honeypot

import (
	"encoding/json"
	"testing"
)

func TestReportDecode(t *testing.T) {
	// Test 1: clean token
	body := `{
		"token": {"name": "Test", "symbol": "TST"},
		"honeypotResult": {"isHoneypot": false},
		"simulationResult": {"buyTax": 0.5, "sellTax": 1.2, "transferTax": 0}
	}`
	var report Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.HoneypotResult.IsHoneypot {
		t.Error("Expected isHoneypot false")
	}
	if report.SimulationResult.BuyTax != 0.5 {
		t.Errorf("Expected buy tax 0.5, got %f", report.SimulationResult.BuyTax)
	}
	if report.SimulationResult.SellTax != 1.2 {
		t.Errorf("Expected sell tax 1.2, got %f", report.SimulationResult.SellTax)
	}

	// Test 2: honeypot without a simulation block
	body = `{"honeypotResult": {"isHoneypot": true, "honeypotReason": "sell reverted"}}`
	report = Report{}
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		t.Fatalf("Failed to decode honeypot report: %v", err)
	}
	if !report.HoneypotResult.IsHoneypot {
		t.Error("Expected isHoneypot true")
	}
	if report.SimulationResult.BuyTax != 0 || report.SimulationResult.SellTax != 0 {
		t.Error("Expected zero taxes when simulation block is absent")
	}
}
