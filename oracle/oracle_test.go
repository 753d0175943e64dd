package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

func validPayload(fixes string) string {
	return `{
  "score": 62,
  "category_scores": {
    "structured_data": 15, "answer_upfront": 70, "freshness_meta": 90,
    "e_e_a_t_signals": 55, "speakable_ready": 5, "snippet_conciseness": 80,
    "crawler_access": 100, "media_alt_caption": 40, "hreflang_lang_meta": 65
  },
  "fixes": [` + fixes + `],
  "keywords": ["coffee", "brewing"],
  "competitorAnalysis": "Competitors use FAQ markup.",
  "targetAudience": "Home baristas",
  "contentGaps": ["grind size table"],
  "improvements": ["Add FAQ"],
  "feedback": "Solid basics.",
  "sentiment": "positive"
}`
}

const goodFix = `{"problem":"No JSON-LD","example":"0 blocks","fix":"Add FAQPage","impact":"high","category":"structured_data","effort":"low","validation":["Rich results test passes"]}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around fence", "Here you go:\n```json\n{\"a\":1}\n```\nThanks!", `{"a":1}`},
		{"prose no fence", `Sure! {"a":{"b":"}"}} trailing`, `{"a":{"b":"}"}}`},
		{"escaped quote", `{"a":"x\"}"} tail`, `{"a":"x\"}"}`},
		{"no object", "nothing here", "nothing here"},
		{"fence inside string value",
			"{\"example\":\"Add this: ```html <b>x</b>```\"}",
			"{\"example\":\"Add this: ```html <b>x</b>```\"}"},
		{"inner fence inside wrapping fence",
			"```json\n{\"example\":\"```html\\n<b>x</b>\\n```\"}\n```",
			"{\"example\":\"```html\\n<b>x</b>\\n```\"}"},
		{"fence with trailing prose", "```json\n{\"a\":1}\n```\nHope this helps.", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParse_Valid(t *testing.T) {
	v, err := Parse("```json\n" + validPayload(goodFix) + "\n```")
	require.NoError(t, err)

	assert.Empty(t, v.Violations)
	assert.Equal(t, 62.0, v.Analysis.Score)
	assert.Len(t, v.Analysis.CategoryScores, 9)
	assert.Equal(t, 15.0, v.Analysis.CategoryScores[models.CategoryStructuredData])
	require.Len(t, v.Analysis.Fixes, 1)
	assert.Equal(t, models.ImpactHigh, v.Analysis.Fixes[0].Impact)
	assert.Equal(t, models.EffortLow, v.Analysis.Fixes[0].Effort)
	assert.Equal(t, models.SentimentPositive, v.Analysis.Sentiment)
	assert.Equal(t, "Home baristas", v.Analysis.TargetAudience)
}

func TestParse_CodeFenceInFixExample(t *testing.T) {
	fix := `{"problem":"No HowTo","example":"Add this: ` + "```html <script type=\\\"application/ld+json\\\">{}</script>```" + `","fix":"Add HowTo","impact":"high","category":"structured_data","effort":"low","validation":[]}`

	for name, raw := range map[string]string{
		"unfenced": validPayload(fix),
		"fenced":   "```json\n" + validPayload(fix) + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			v, err := Parse(raw)
			require.NoError(t, err)
			require.Len(t, v.Analysis.Fixes, 1)
			assert.Equal(t, "Add this: ```html <script type=\"application/ld+json\">{}</script>```", v.Analysis.Fixes[0].Example)
		})
	}
}

func TestParse_NotJSON(t *testing.T) {
	raw := "I cannot score this page."
	_, err := Parse(raw)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleParse, ae.Code)
	assert.Equal(t, raw, ae.Raw)
	assert.False(t, ae.Retryable())
}

func TestParse_MissingCategory(t *testing.T) {
	raw := strings.Replace(validPayload(goodFix), `"hreflang_lang_meta": 65`, `"other": 1`, 1)
	_, err := Parse(raw)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleParse, ae.Code)
	assert.Contains(t, ae.Message, "hreflang_lang_meta")
	assert.Equal(t, raw, ae.Raw)
}

func TestParse_NullCategoryScore(t *testing.T) {
	raw := strings.Replace(validPayload(goodFix), `"structured_data": 15`, `"structured_data": null`, 1)
	_, err := Parse(raw)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleParse, ae.Code)
	assert.Contains(t, ae.Message, "structured_data")
}

func TestParse_NonNumericScore(t *testing.T) {
	raw := strings.Replace(validPayload(goodFix), `"crawler_access": 100`, `"crawler_access": "high"`, 1)
	_, err := Parse(raw)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleParse, ae.Code)
}

func TestParse_EnumViolationsDropFix(t *testing.T) {
	badImpact := strings.Replace(goodFix, `"impact":"high"`, `"impact":"critical"`, 1)
	badEffort := strings.Replace(goodFix, `"effort":"low"`, `"effort":"med"`, 1)
	raw := strings.Replace(validPayload(goodFix+","+badImpact+","+badEffort), `"sentiment": "positive"`, `"sentiment": "mixed"`, 1)

	v, err := Parse(raw)
	require.NoError(t, err)

	assert.Len(t, v.Analysis.Fixes, 1)
	assert.Equal(t, models.Sentiment(""), v.Analysis.Sentiment)
	assert.Equal(t, []string{
		`enum violation: sentiment="mixed"`,
		`enum violation: fixes[1].impact="critical"`,
		`enum violation: fixes[2].effort="med"`,
	}, v.Violations)
}

func TestParse_TooManyFixesTruncated(t *testing.T) {
	fixes := make([]string, 25)
	for i := range fixes {
		fixes[i] = strings.Replace(goodFix, "No JSON-LD", fmt.Sprintf("problem %d", i), 1)
	}
	v, err := Parse(validPayload(strings.Join(fixes, ",")))
	require.NoError(t, err)

	require.Len(t, v.Analysis.Fixes, models.MaxOracleFixes)
	assert.Equal(t, "problem 19", v.Analysis.Fixes[19].Problem)
	assert.Equal(t, []string{"fixes truncated: 25 returned, limit 20"}, v.Violations)
}

func TestCall_Success(t *testing.T) {
	var got Prompts
	o := Func(func(ctx context.Context, p Prompts) (string, error) {
		got = p
		return "{}", nil
	})

	raw, err := Call(context.Background(), o, Prompts{System: "s", User: "u"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)
	assert.Equal(t, Prompts{System: "s", User: "u"}, got)
}

func TestCall_Timeout(t *testing.T) {
	o := Func(func(ctx context.Context, p Prompts) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := Call(context.Background(), o, Prompts{}, 20*time.Millisecond)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleTimeout, ae.Code)
	assert.True(t, ae.Retryable())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCall_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := Func(func(ctx context.Context, p Prompts) (string, error) {
		return "", ctx.Err()
	})

	_, err := Call(ctx, o, Prompts{}, time.Second)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleTimeout, ae.Code)
}

func TestCall_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	o := Func(func(ctx context.Context, p Prompts) (string, error) {
		return "", cause
	})

	_, err := Call(context.Background(), o, Prompts{}, time.Second)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleCall, ae.Code)
	assert.True(t, ae.Retryable())
	assert.ErrorIs(t, err, cause)
}

func TestCall_ClassifiedErrorPassesThrough(t *testing.T) {
	o := Func(func(ctx context.Context, p Prompts) (string, error) {
		return "", models.NewAuditError(models.ErrCodeOracleAuth, "bad key", nil)
	})

	_, err := Call(context.Background(), o, Prompts{}, time.Second)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleAuth, ae.Code)
}
