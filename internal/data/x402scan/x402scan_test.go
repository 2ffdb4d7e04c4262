package x402scan

import "testing"

func TestDecodeResourcesShapes(t *testing.T) {
	entry := `{
		"name": "x420 Token",
		"symbol": "x420",
		"contract": "0x1234567890abcdef1234567890abcdef12345678",
		"mint_url": "https://www.x420.dev/api/puff",
		"price_usdc": 1,
		"server": "x420.dev"
	}`

	// Test 1: resources envelope
	resources, err := decodeResources([]byte(`{"resources": [` + entry + `]}`))
	if err != nil {
		t.Fatalf("Failed to decode resources envelope: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("Expected 1 resource, got %d", len(resources))
	}
	if resources[0].Name != "x420 Token" {
		t.Errorf("Expected name 'x420 Token', got %s", resources[0].Name)
	}
	if resources[0].Contract != "0x1234567890abcdef1234567890abcdef12345678" {
		t.Errorf("Unexpected contract: %s", resources[0].Contract)
	}
	if resources[0].PriceUSDC != 1 {
		t.Errorf("Expected price 1 USDC, got %f", resources[0].PriceUSDC)
	}

	// Test 2: items envelope
	resources, err = decodeResources([]byte(`{"items": [` + entry + `]}`))
	if err != nil {
		t.Fatalf("Failed to decode items envelope: %v", err)
	}
	if len(resources) != 1 || resources[0].Symbol != "x420" {
		t.Errorf("Items envelope decoded wrong: %+v", resources)
	}

	// Test 3: bare array
	resources, err = decodeResources([]byte(`[` + entry + `]`))
	if err != nil {
		t.Fatalf("Failed to decode bare array: %v", err)
	}
	if len(resources) != 1 || resources[0].Server != "x420.dev" {
		t.Errorf("Bare array decoded wrong: %+v", resources)
	}

	// Test 4: empty resources envelope still matches the first shape
	resources, err = decodeResources([]byte(`{"resources": []}`))
	if err != nil {
		t.Fatalf("Failed to decode empty envelope: %v", err)
	}
	if len(resources) != 0 {
		t.Errorf("Expected 0 resources, got %d", len(resources))
	}

	// Test 5: unknown shape is an error
	if _, err = decodeResources([]byte(`{"data": {"nested": true}}`)); err == nil {
		t.Error("Expected error for unknown shape, got nil")
	}

	// Test 6: non-JSON is an error
	if _, err = decodeResources([]byte(`<html>rate limited</html>`)); err == nil {
		t.Error("Expected error for non-JSON body, got nil")
	}
}

func TestDecodeResourcesPrefersResourcesKey(t *testing.T) {
	// When both keys are present the resources envelope wins.
	body := `{"resources": [{"name": "A", "contract": "0x1"}], "items": [{"name": "B", "contract": "0x2"}]}`
	resources, err := decodeResources([]byte(body))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(resources) != 1 || resources[0].Name != "A" {
		t.Errorf("Expected resources key to win, got %+v", resources)
	}
}
