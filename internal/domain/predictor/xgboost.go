package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/waitcast/internal/domain/features"
)

type link int

const (
	linkIdentity link = iota
	linkLog
	linkLogistic
)

var objectiveLinks = map[string]link{
	"reg:squarederror":     linkIdentity,
	"reg:linear":           linkIdentity,
	"reg:squaredlogerror":  linkIdentity,
	"reg:pseudohubererror": linkIdentity,
	"reg:absoluteerror":    linkIdentity,
	"reg:quantileerror":    linkIdentity,
	"count:poisson":        linkLog,
	"reg:gamma":            linkLog,
	"reg:tweedie":          linkLog,
	"reg:logistic":         linkLogistic,
	"binary:logistic":      linkLogistic,
}

// XGBoost evaluates a gradient boosted tree ensemble saved in XGBoost's JSON
// model format. Only numeric splits of the gbtree booster are supported.
type XGBoost struct {
	trees        []tree
	baseMargin   float64
	link         link
	featureNames []string
	numFeature   int
}

type tree struct {
	left       []int
	right      []int
	split      []int
	cond       []float64
	defLeft    []bool
	maxFeature int
}

// flexBool accepts both 0/1 and true/false, which differ between XGBoost releases.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*b = true
	case "0", "false":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

type xgbDocument struct {
	Learner struct {
		FeatureNames    []string `json:"feature_names"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []struct {
					LeftChildren    []int      `json:"left_children"`
					RightChildren   []int      `json:"right_children"`
					SplitIndices    []int      `json:"split_indices"`
					SplitConditions []float64  `json:"split_conditions"`
					DefaultLeft     []flexBool `json:"default_left"`
					SplitType       []int      `json:"split_type"`
				} `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

// LoadXGBoost reads an XGBoost JSON model from path.
func LoadXGBoost(path string) (*XGBoost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadModel, err)
	}
	return ParseXGBoost(data)
}

// ParseXGBoost decodes an XGBoost JSON model.
func ParseXGBoost(data []byte) (*XGBoost, error) {
	var doc xgbDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadModel, err)
	}
	l := doc.Learner

	if l.GradientBooster.Name != "gbtree" {
		return nil, fmt.Errorf("%w: booster %q", ErrUnsupportedModel, l.GradientBooster.Name)
	}
	lk, ok := objectiveLinks[l.Objective.Name]
	if !ok {
		return nil, fmt.Errorf("%w: objective %q", ErrUnsupportedModel, l.Objective.Name)
	}

	base, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("%w: base_score: %w", ErrLoadModel, err)
	}
	margin, err := toMargin(lk, base)
	if err != nil {
		return nil, err
	}

	m := &XGBoost{
		baseMargin:   margin,
		link:         lk,
		featureNames: l.FeatureNames,
	}
	if l.LearnerModelParam.NumFeature != "" {
		if m.numFeature, err = strconv.Atoi(l.LearnerModelParam.NumFeature); err != nil {
			return nil, fmt.Errorf("%w: num_feature: %w", ErrLoadModel, err)
		}
	}

	for i, raw := range l.GradientBooster.Model.Trees {
		n := len(raw.LeftChildren)
		if n == 0 || len(raw.RightChildren) != n || len(raw.SplitIndices) != n ||
			len(raw.SplitConditions) != n || len(raw.DefaultLeft) != n {
			return nil, fmt.Errorf("%w: tree %d has inconsistent arrays", ErrMalformedTree, i)
		}
		for _, st := range raw.SplitType {
			if st != 0 {
				return nil, fmt.Errorf("%w: tree %d uses categorical splits", ErrUnsupportedModel, i)
			}
		}
		t := tree{
			left:    raw.LeftChildren,
			right:   raw.RightChildren,
			split:   raw.SplitIndices,
			cond:    raw.SplitConditions,
			defLeft: make([]bool, n),
		}
		for j := range raw.DefaultLeft {
			t.defLeft[j] = bool(raw.DefaultLeft[j])
			l, r := t.left[j], t.right[j]
			switch {
			case l < -1 || r < -1 || l >= n || r >= n:
				return nil, fmt.Errorf("%w: tree %d node %d points outside the tree", ErrMalformedTree, i, j)
			case (l == -1) != (r == -1):
				return nil, fmt.Errorf("%w: tree %d node %d has a single child", ErrMalformedTree, i, j)
			case l != -1 && t.split[j] < 0:
				return nil, fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrMalformedTree, i, j, t.split[j])
			}
			if l != -1 && t.split[j] > t.maxFeature {
				t.maxFeature = t.split[j]
			}
		}
		m.trees = append(m.trees, t)
	}
	return m, nil
}

func parseBaseScore(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return 0.5, nil
	}
	return strconv.ParseFloat(s, 64)
}

func toMargin(lk link, base float64) (float64, error) {
	switch lk {
	case linkLog:
		if base <= 0 {
			return 0, fmt.Errorf("%w: base_score %v for log link", ErrLoadModel, base)
		}
		return math.Log(base), nil
	case linkLogistic:
		if base <= 0 || base >= 1 {
			return 0, fmt.Errorf("%w: base_score %v for logistic link", ErrLoadModel, base)
		}
		return math.Log(base / (1 - base)), nil
	default:
		return base, nil
	}
}

// CheckSchema verifies that the model was trained on exactly the schema's
// columns, in order. Models saved without feature names are checked by count.
func (m *XGBoost) CheckSchema(s *features.Schema) error {
	if len(m.featureNames) > 0 {
		names := s.Names()
		if len(names) != len(m.featureNames) {
			return fmt.Errorf("%w: model has %d features, schema %d", ErrFeatureMismatch, len(m.featureNames), len(names))
		}
		for i := range names {
			if names[i] != m.featureNames[i] {
				return fmt.Errorf("%w: column %d is %q in the model and %q in the schema",
					ErrFeatureMismatch, i, m.featureNames[i], names[i])
			}
		}
		return nil
	}
	if m.numFeature > 0 && m.numFeature != s.Len() {
		return fmt.Errorf("%w: model has %d features, schema %d", ErrFeatureMismatch, m.numFeature, s.Len())
	}
	return nil
}

// Trees returns the number of trees in the ensemble.
func (m *XGBoost) Trees() int { return len(m.trees) }

// Predict sums the leaf values of every tree and applies the objective's link.
func (m *XGBoost) Predict(_ context.Context, v features.Vector) (float64, error) {
	x := v.Values()
	margin := m.baseMargin
	for i := range m.trees {
		leaf, err := m.trees[i].eval(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		margin += leaf
	}

	switch m.link {
	case linkLog:
		return math.Exp(margin), nil
	case linkLogistic:
		return 1 / (1 + math.Exp(-margin)), nil
	default:
		return margin, nil
	}
}

func (t *tree) eval(x []float64) (float64, error) {
	if t.maxFeature >= len(x) {
		return 0, fmt.Errorf("%w: split on feature %d, vector has %d", ErrFeatureMismatch, t.maxFeature, len(x))
	}
	node := 0
	for steps := 0; steps <= len(t.left); steps++ {
		if t.left[node] == -1 {
			return t.cond[node], nil
		}
		val := x[t.split[node]]
		switch {
		case math.IsNaN(val):
			if t.defLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case val < t.cond[node]:
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}
	return 0, fmt.Errorf("%w: cycle detected", ErrMalformedTree)
}
