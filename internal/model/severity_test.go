package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestGetSeverity tests the GetSeverity function.
func TestGetSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		signalType string
		expected   Severity
	}{
		// Critical signals
		{"identity_correlation", SeverityCritical},

		// High signals
		{"real_name_disclosed", SeverityHigh},
		{"personal_website", SeverityHigh},
		{"employer_disclosed", SeverityHigh},
		{"handle_reuse", SeverityHigh},

		// Medium signals
		{"email_disclosed", SeverityMedium},
		{"location_disclosed", SeverityMedium},
		{"cross_platform_link", SeverityMedium},

		// Info signals
		{"high_engagement", SeverityInfo},
		{"stale_account", SeverityInfo},

		// Unknown signal type defaults to Info
		{"unknown_type", SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.signalType, func(t *testing.T) {
			t.Parallel()
			result := GetSeverity(tc.signalType)
			if result != tc.expected {
				t.Errorf("GetSeverity(%q) = %v, expected %v", tc.signalType, result, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityLow {
		t.Error("expected SeverityInfo < SeverityLow")
	}
	if SeverityLow >= SeverityMedium {
		t.Error("expected SeverityLow < SeverityMedium")
	}
	if SeverityMedium >= SeverityHigh {
		t.Error("expected SeverityMedium < SeverityHigh")
	}
	if SeverityHigh >= SeverityCritical {
		t.Error("expected SeverityHigh < SeverityCritical")
	}
}

// TestGetSignalInfo tests the GetSignalInfo function.
func TestGetSignalInfo(t *testing.T) {
	t.Parallel()

	t.Run("returns correct info for known signal type", func(t *testing.T) {
		t.Parallel()

		info := GetSignalInfo("identity_correlation")

		if info.Severity != SeverityCritical {
			t.Errorf("expected SeverityCritical, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty Impact")
		}
		if info.Recommendation == "" {
			t.Error("expected non-empty Recommendation")
		}
	})

	t.Run("returns default info for unknown signal type", func(t *testing.T) {
		t.Parallel()

		info := GetSignalInfo("completely_unknown_type")

		if info.Severity != SeverityInfo {
			t.Errorf("expected SeverityInfo for unknown type, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty default Impact")
		}
		if info.Recommendation == "" {
			t.Error("expected non-empty default Recommendation")
		}
	})
}

// TestSignalInfoMappingCompleteness tests that all signal types have proper info.
func TestSignalInfoMappingCompleteness(t *testing.T) {
	t.Parallel()

	signalTypes := []string{
		"identity_correlation",
		"real_name_disclosed",
		"personal_website",
		"employer_disclosed",
		"handle_reuse",
		"email_disclosed",
		"location_disclosed",
		"cross_platform_link",
		"high_engagement",
		"stale_account",
	}

	for _, signalType := range signalTypes {
		t.Run(signalType, func(t *testing.T) {
			t.Parallel()

			info := GetSignalInfo(signalType)

			if info.Impact == "" {
				t.Errorf("signal type %q has empty Impact", signalType)
			}
			if info.Recommendation == "" {
				t.Errorf("signal type %q has empty Recommendation", signalType)
			}
			if info.Impact == "Unknown signal type. Review manually." {
				t.Errorf("signal type %q returned default Impact", signalType)
			}
		})
	}
}
