package store

import (
	"testing"
)

const sampleLog = `2025/06/01 08:00:01 🚀 Token Scanner started
2025/06/01 08:00:01 📊 Chain: base (chain ID 8453)
2025/06/01 08:05:02 🔍 [Scan #2] Checking for new tokens...
2025/06/01 08:05:04 🆕 New BUY: Moon Cat (0xaaa)
continuation line without a timestamp
2025/06/01 08:05:06 ✅ [Scan #2] Done. Next scan in 5m0s
`

func TestGetLogsFromFile(t *testing.T) {
	entries := GetLogsFromFile(sampleLog, "")
	if len(entries) != 6 {
		t.Fatalf("Expected 6 entries, got %d", len(entries))
	}
	if entries[0].TS != "2025-06-01T08:00:01Z" {
		t.Errorf("Expected parsed first timestamp, got %s", entries[0].TS)
	}
	// Lines without a timestamp prefix still come through, with an empty TS.
	if entries[4].TS != "" {
		t.Errorf("Expected empty TS for continuation line, got %s", entries[4].TS)
	}
	if entries[4].Message != "continuation line without a timestamp" {
		t.Errorf("Unexpected continuation message: %s", entries[4].Message)
	}
}

func TestGetLogsFromFileSearch(t *testing.T) {
	entries := GetLogsFromFile(sampleLog, "scan #2")
	if len(entries) != 2 {
		t.Fatalf("Expected 2 matching entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Message == "" {
			t.Errorf("Entry %d: expected non-empty message", i)
		}
	}
}

func TestGetLogsFromFileSince(t *testing.T) {
	entries := GetLogsFromFileSince(sampleLog, "2025-06-01T08:05:02Z", "")
	// Strictly after the checkpoint: the 08:05:04 and 08:05:06 lines, plus
	// the untimestamped continuation line.
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries after checkpoint, got %d", len(entries))
	}
	if entries[0].TS != "2025-06-01T08:05:04Z" {
		t.Errorf("Expected first entry at 08:05:04, got %s", entries[0].TS)
	}
}

func TestGetCheckpointFromFile(t *testing.T) {
	cp := GetCheckpointFromFile(sampleLog)
	if cp != "2025-06-01T08:05:06Z" {
		t.Errorf("Expected checkpoint of last timestamped line, got %s", cp)
	}

	if cp := GetCheckpointFromFile(""); cp != "" {
		t.Errorf("Expected empty checkpoint for empty content, got %s", cp)
	}
	if cp := GetCheckpointFromFile("no timestamps here\nnone here either\n"); cp != "" {
		t.Errorf("Expected empty checkpoint without parseable lines, got %s", cp)
	}
}
