package inference

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/spend-sense/internal/model"
	"gonum.org/v1/gonum/floats"
)

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// TemplatePhrase is the canonical description of an intervention template.
type TemplatePhrase struct {
	Key    model.TemplateKey
	Phrase string
}

// DefaultTemplatePhrases are the canonical phrases of the ranked templates, in tie-break order.
var DefaultTemplatePhrases = []TemplatePhrase{
	{Key: model.TemplateTimeShift, Phrase: "move spending to planned daytime purchases"},
	{Key: model.TemplateHomeSubstitution, Phrase: "replace paid convenience with home alternatives"},
	{Key: model.TemplateBundlePlan, Phrase: "group purchases into fewer planned sessions"},
	{Key: model.TemplateLowCostSwap, Phrase: "swap high-cost items with lower-cost options"},
	{Key: model.TemplateCooldownRule, Phrase: "add a short waiting period before purchase"},
}

// TemplateScore is the similarity of a text to one template.
type TemplateScore struct {
	Key        model.TemplateKey
	Similarity float64
}

// TemplateRanker ranks templates by TF-IDF cosine similarity. It is fitted
// once on the template phrases and is read-only afterwards.
type TemplateRanker struct {
	vocab   map[string]int
	idf     []float64
	keys    []model.TemplateKey
	vectors [][]float64
}

// NewDefaultTemplateRanker fits a ranker on DefaultTemplatePhrases.
func NewDefaultTemplateRanker() *TemplateRanker {
	return NewTemplateRanker(DefaultTemplatePhrases)
}

// NewTemplateRanker fits the vocabulary and smoothed IDF weights on the phrases.
func NewTemplateRanker(phrases []TemplatePhrase) *TemplateRanker {
	docs := make([][]string, len(phrases))
	df := make(map[string]int)
	for i, p := range phrases {
		docs[i] = tokenize(p.Phrase)
		seen := make(map[string]bool)
		for _, tok := range docs[i] {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	r := &TemplateRanker{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		keys:  make([]model.TemplateKey, len(phrases)),
	}
	n := float64(len(phrases))
	for i, term := range terms {
		r.vocab[term] = i
		r.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	for i, p := range phrases {
		r.keys[i] = p.Key
		r.vectors = append(r.vectors, r.vectorize(docs[i]))
	}
	return r
}

// Rank scores every template against text and returns the topK best, highest
// first. Ties keep the template declaration order.
func (r *TemplateRanker) Rank(text string, topK int) []TemplateScore {
	query := r.vectorize(tokenize(text))

	scores := make([]TemplateScore, len(r.keys))
	for i, key := range r.keys {
		scores[i] = TemplateScore{Key: key, Similarity: floats.Dot(query, r.vectors[i])}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Similarity > scores[j].Similarity
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	return scores[:topK]
}

// Similarity returns the cosine similarity between text and one template.
func (r *TemplateRanker) Similarity(text string, key model.TemplateKey) float64 {
	query := r.vectorize(tokenize(text))
	for i, k := range r.keys {
		if k == key {
			return floats.Dot(query, r.vectors[i])
		}
	}
	return 0
}

// vectorize builds an L2-normalized TF-IDF vector. Unknown terms are ignored;
// a text with no known terms yields the zero vector.
func (r *TemplateRanker) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(r.idf))
	for _, tok := range tokens {
		if idx, ok := r.vocab[tok]; ok {
			vec[idx]++
		}
	}
	floats.Mul(vec, r.idf)

	norm := floats.Norm(vec, 2)
	if norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
