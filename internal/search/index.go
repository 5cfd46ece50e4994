// Package search implements a TF-IDF vector-space index over complaint
// narrative text with ranked cosine-similarity queries. An index is an
// immutable snapshot of the document set it was built from: any change to the
// corpus requires a full rebuild before the next query.
package search

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// maxDocFreqRatio drops terms that appear in more than this share of
// documents; they carry almost no discriminating weight.
const maxDocFreqRatio = 0.98

// Hit is one ranked query result.
type Hit struct {
	DocID int     `json:"docId"` // position of the document in the build corpus
	Score float64 `json:"score"` // cosine similarity in [0, 1]
}

// Index is an immutable TF-IDF snapshot over a document set.
type Index struct {
	id      uuid.UUID
	vocab   map[string]int // term -> column
	idf     []float64      // per column
	vectors []map[int]float64
	texts   []string
}

// Build tokenizes every document, computes TF-IDF weights over the shared
// vocabulary, and L2-normalizes each document vector so cosine similarity
// reduces to a dot product. An empty corpus builds an empty index.
func Build(texts []string) *Index {
	idx := &Index{
		id:    uuid.New(),
		vocab: make(map[string]int),
		texts: append([]string(nil), texts...),
	}

	// Pass 1: term frequencies per document and document frequencies.
	docTokens := make([]map[string]int, len(texts))
	docFreq := make(map[string]int)
	for i, text := range texts {
		tf := make(map[string]int)
		for _, tok := range tokenize(text) {
			tf[tok]++
		}
		docTokens[i] = tf
		for tok := range tf {
			docFreq[tok]++
		}
	}

	// Vocabulary over terms that survive the document-frequency ceiling,
	// assigned in sorted order for deterministic column numbering.
	maxDF := len(texts)
	if len(texts) > 1 {
		maxDF = int(math.Floor(maxDocFreqRatio * float64(len(texts))))
		if maxDF < 1 {
			maxDF = 1
		}
	}
	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df <= maxDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	idx.idf = make([]float64, len(terms))
	for col, term := range terms {
		idx.vocab[term] = col
		idx.idf[col] = math.Log(float64(len(texts)) / float64(docFreq[term]))
	}

	// Pass 2: weighted, normalized document vectors.
	idx.vectors = make([]map[int]float64, len(texts))
	for i, tf := range docTokens {
		vec := make(map[int]float64, len(tf))
		for term, n := range tf {
			col, ok := idx.vocab[term]
			if !ok {
				continue
			}
			if w := float64(n) * idx.idf[col]; w > 0 {
				vec[col] = w
			}
		}
		normalize(vec)
		idx.vectors[i] = vec
	}
	return idx
}

// ID returns the snapshot identifier assigned at build time. Two indexes built
// from the same corpus still have distinct ids; callers use the id to detect
// that results came from a stale snapshot.
func (idx *Index) ID() uuid.UUID { return idx.id }

// Len returns the number of documents in the snapshot.
func (idx *Index) Len() int { return len(idx.vectors) }

// Text returns the source text for a document id.
func (idx *Index) Text(docID int) string {
	if docID < 0 || docID >= len(idx.texts) {
		return ""
	}
	return idx.texts[docID]
}

// Query tokenizes the query with the build tokenizer, projects it into the
// existing vocabulary (unseen terms weigh zero), and returns the topK
// documents by cosine similarity, descending, ties broken by ascending
// document id. An empty query or an empty index yields an empty result.
func (idx *Index) Query(query string, topK int) []Hit {
	if topK <= 0 || len(idx.vectors) == 0 {
		return nil
	}
	qtf := make(map[int]float64)
	for _, tok := range tokenize(query) {
		if col, ok := idx.vocab[tok]; ok {
			qtf[col]++
		}
	}
	if len(qtf) == 0 {
		return nil
	}
	for col := range qtf {
		qtf[col] *= idx.idf[col]
	}
	normalize(qtf)

	hits := make([]Hit, 0, len(idx.vectors))
	for docID, vec := range idx.vectors {
		score := dot(qtf, vec)
		if score > 0 {
			hits = append(hits, Hit{DocID: docID, Score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func normalize(vec map[int]float64) {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for col := range vec {
		vec[col] /= norm
	}
}

// dot iterates the smaller vector against the larger one.
func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for col, w := range a {
		sum += w * b[col]
	}
	return sum
}
