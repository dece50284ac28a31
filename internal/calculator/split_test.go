package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namansharma3007/Equi-share/internal/money"
)

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		payer        string
		participants []string
		want         []Share
		wantErr      bool
	}{
		{
			name:         "three-way split gives the payer the leftover cent",
			amount:       "100.00",
			payer:        "u1",
			participants: []string{"u1", "u2", "u3"},
			want: []Share{
				{UserID: "u1", Amount: money.MustParse("33.34")},
				{UserID: "u2", Amount: money.MustParse("33.33")},
				{UserID: "u3", Amount: money.MustParse("33.33")},
			},
		},
		{
			name:         "payer is moved to the front",
			amount:       "0.05",
			payer:        "u3",
			participants: []string{"u1", "u2", "u3"},
			want: []Share{
				{UserID: "u3", Amount: money.MustParse("0.02")},
				{UserID: "u1", Amount: money.MustParse("0.02")},
				{UserID: "u2", Amount: money.MustParse("0.01")},
			},
		},
		{
			name:         "payer not participating keeps request order",
			amount:       "10.00",
			payer:        "p",
			participants: []string{"a", "b", "c"},
			want: []Share{
				{UserID: "a", Amount: money.MustParse("3.34")},
				{UserID: "b", Amount: money.MustParse("3.33")},
				{UserID: "c", Amount: money.MustParse("3.33")},
			},
		},
		{
			name:         "no participants should error",
			amount:       "10.00",
			payer:        "u1",
			participants: nil,
			wantErr:      true,
		},
		{
			name:         "zero amount should error",
			amount:       "0",
			payer:        "u1",
			participants: []string{"u1"},
			wantErr:      true,
		},
		{
			name:         "duplicate participant should error",
			amount:       "10.00",
			payer:        "u1",
			participants: []string{"u1", "u2", "u2"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit(money.MustParse(tt.amount), tt.payer, tt.participants)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			total := money.Zero
			for _, s := range got {
				total = total.Add(s.Amount)
			}
			assert.True(t, total.Equal(money.MustParse(tt.amount)), "shares must sum to the amount")
		})
	}
}
