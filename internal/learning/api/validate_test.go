package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompareRequest(t *testing.T) {
	valid := CompareRequest{SubmissionID: "sub-1", DraftRef: "a.txt", FinalRef: "b.txt"}
	assert.Nil(t, ValidateCompareRequest(&valid))

	tests := []struct {
		name  string
		req   CompareRequest
		field string
	}{
		{
			name:  "empty submission id",
			req:   CompareRequest{DraftRef: "a", FinalRef: "b"},
			field: "submission_id",
		},
		{
			name:  "submission id too long",
			req:   CompareRequest{SubmissionID: strings.Repeat("a", MaxSubmissionIDLen+1), DraftRef: "a", FinalRef: "b"},
			field: "submission_id",
		},
		{
			name:  "submission id bad characters",
			req:   CompareRequest{SubmissionID: "has space", DraftRef: "a", FinalRef: "b"},
			field: "submission_id",
		},
		{
			name:  "empty draft ref",
			req:   CompareRequest{SubmissionID: "s", FinalRef: "b"},
			field: "draft_ref",
		},
		{
			name:  "draft ref too long",
			req:   CompareRequest{SubmissionID: "s", DraftRef: strings.Repeat("x", MaxRefLen+1), FinalRef: "b"},
			field: "draft_ref",
		},
		{
			name:  "empty final ref",
			req:   CompareRequest{SubmissionID: "s", DraftRef: "a"},
			field: "final_ref",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateCompareRequest(&tt.req)
			require.NotNil(t, verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Error(), "E_INVALID_ARGUMENT")
		})
	}
}

func TestValidateOverrideRequest(t *testing.T) {
	valid := OverrideRequest{RuleKey: "teh=>the", Disabled: true, Reason: "noise"}
	assert.Nil(t, ValidateOverrideRequest(&valid))

	tests := []struct {
		name  string
		req   OverrideRequest
		field string
	}{
		{"empty key", OverrideRequest{}, "rule_key"},
		{"no separator", OverrideRequest{RuleKey: "teh-the"}, "rule_key"},
		{"empty source", OverrideRequest{RuleKey: "=>the"}, "rule_key"},
		{"empty target", OverrideRequest{RuleKey: "teh=>"}, "rule_key"},
		{"key too long", OverrideRequest{RuleKey: strings.Repeat("a", MaxRuleKeyLen) + "=>b"}, "rule_key"},
		{"reason too long", OverrideRequest{RuleKey: "a=>b", Reason: strings.Repeat("r", MaxReasonLen+1)}, "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateOverrideRequest(&tt.req)
			require.NotNil(t, verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, MinLimit, ClampLimit(-5))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+100))
	assert.Equal(t, 25, ClampLimit(25))
}
