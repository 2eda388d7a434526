package tm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sbs-go/internal/model"
)

func entry(id, user, lang, src string, conf float64) *model.TMEntry {
	return &model.TMEntry{
		ID:             id,
		UserID:         user,
		SourceLanguage: lang,
		TargetLanguage: "fr",
		SourceText:     src,
		TargetText:     src + " (fr)",
		Confidence:     conf,
	}
}

func ptr(f float64) *float64 { return &f }

func ids(entries []*model.TMEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestMatch_QueryIsFragmentOfEntry(t *testing.T) {
	entries := []*model.TMEntry{entry("a", "u1", "en", "hello world", 0.9)}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello", MinConfidence: ptr(0.7)})

	assert.Equal(t, []string{"a"}, ids(got))
}

func TestMatch_EntryIsFragmentOfQuery(t *testing.T) {
	entries := []*model.TMEntry{entry("a", "u1", "en", "Hello", 0.9)}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello WORLD, again"})

	assert.Equal(t, []string{"a"}, ids(got))
}

func TestMatch_ConfidenceThreshold(t *testing.T) {
	entries := []*model.TMEntry{entry("low", "u1", "en", "hello", 0.5)}

	assert.Empty(t, Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello", MinConfidence: ptr(0.7)}))
	assert.Empty(t, Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello"}), "default threshold is 0.7")
	assert.Equal(t, []string{"low"}, ids(Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello", MinConfidence: ptr(0.5)})))
}

func TestMatch_NamespaceIsolation(t *testing.T) {
	entries := []*model.TMEntry{
		entry("other", "u2", "en", "hello world", 1.0),
		entry("mine", "u1", "en", "hello world", 0.8),
	}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello world"})

	assert.Equal(t, []string{"mine"}, ids(got))
}

func TestMatch_LanguageIsExact(t *testing.T) {
	entries := []*model.TMEntry{
		entry("upper", "u1", "EN", "hello", 1.0),
		entry("de", "u1", "de", "hello", 1.0),
		entry("en", "u1", "en", "hello", 1.0),
	}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello"})

	assert.Equal(t, []string{"en"}, ids(got))
}

func TestMatch_TargetLanguageFilter(t *testing.T) {
	es := entry("es", "u1", "en", "hello", 1.0)
	es.TargetLanguage = "es"
	entries := []*model.TMEntry{es, entry("fr", "u1", "en", "hello", 0.9)}

	assert.Equal(t, []string{"es", "fr"}, ids(Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "hello"})))
	assert.Equal(t, []string{"fr"}, ids(Match(entries, Query{UserID: "u1", SourceLanguage: "en", TargetLanguage: "fr", Text: "hello"})))
}

func TestMatch_RankingByConfidence(t *testing.T) {
	entries := []*model.TMEntry{
		entry("a", "u1", "en", "good morning", 0.95),
		entry("b", "u1", "en", "good morning", 0.72),
		entry("c", "u1", "en", "good morning", 0.81),
	}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "good morning"})

	assert.Equal(t, []string{"a", "c", "b"}, ids(got))
}

func TestMatch_TiesKeepInputOrder(t *testing.T) {
	entries := []*model.TMEntry{
		entry("first", "u1", "en", "thanks", 0.8),
		entry("top", "u1", "en", "thanks", 0.9),
		entry("second", "u1", "en", "thanks", 0.8),
	}

	got := Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "thanks"})

	assert.Equal(t, []string{"top", "first", "second"}, ids(got))
}

func TestMatch_NoContainment(t *testing.T) {
	entries := []*model.TMEntry{entry("a", "u1", "en", "hello world", 1.0)}

	assert.Empty(t, Match(entries, Query{UserID: "u1", SourceLanguage: "en", Text: "goodbye"}))
}
