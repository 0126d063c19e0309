package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Classifier estimates the probability of the positive class.
type Classifier interface {
	Fit(x [][]float64, y []int) error
	PredictProba(features []float64) (float64, error)
}

type ForestConfig struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// RandomForest is a bagged ensemble of CART trees split on Gini impurity, each split
// drawing sqrt(features) candidate columns.
type RandomForest struct {
	Config      ForestConfig
	NumFeatures int
	Trees       []DecisionTree
}

type DecisionTree struct {
	Nodes []TreeNode
}

// TreeNode is either a leaf carrying the positive fraction of its samples, or a split
// sending features[Feature] <= Threshold to Left.
type TreeNode struct {
	Leaf        bool
	Probability float64
	Feature     int
	Threshold   float64
	Left        int
	Right       int
}

func NewRandomForest(config ForestConfig) *RandomForest {
	return &RandomForest{Config: config}
}

func (f *RandomForest) Fit(x [][]float64, y []int) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("forest: %d samples for %d labels", len(x), len(y))
	}
	if f.Config.Trees <= 0 || f.Config.MaxDepth <= 0 {
		return fmt.Errorf("forest: invalid config %+v", f.Config)
	}
	f.NumFeatures = len(x[0])
	for _, row := range x {
		if len(row) != f.NumFeatures {
			return fmt.Errorf("forest: ragged feature matrix")
		}
	}

	mtry := int(math.Sqrt(float64(f.NumFeatures)))
	if mtry < 1 {
		mtry = 1
	}
	minSplit := f.Config.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}

	rnd := rand.New(rand.NewSource(f.Config.Seed))
	f.Trees = make([]DecisionTree, f.Config.Trees)
	for t := range f.Trees {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rnd.Intn(len(x))
		}
		builder := treeBuilder{
			x:        x,
			y:        y,
			rnd:      rnd,
			mtry:     mtry,
			maxDepth: f.Config.MaxDepth,
			minSplit: minSplit,
		}
		builder.grow(sample, 0)
		f.Trees[t] = builder.tree
	}
	return nil
}

func (f *RandomForest) PredictProba(features []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest: not fitted")
	}
	if len(features) != f.NumFeatures {
		return 0, fmt.Errorf("forest: expected %d features, got %d", f.NumFeatures, len(features))
	}
	total := 0.0
	for _, tree := range f.Trees {
		total += tree.predict(features)
	}
	return total / float64(len(f.Trees)), nil
}

func (t DecisionTree) predict(features []float64) float64 {
	node := t.Nodes[0]
	for !node.Leaf {
		if features[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node.Probability
}

type treeBuilder struct {
	x        [][]float64
	y        []int
	rnd      *rand.Rand
	mtry     int
	maxDepth int
	minSplit int
	tree     DecisionTree
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	node := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{})

	positives := 0
	for _, i := range idx {
		positives += b.y[i]
	}
	probability := float64(positives) / float64(len(idx))

	if depth >= b.maxDepth || len(idx) < b.minSplit || positives == 0 || positives == len(idx) {
		b.tree.Nodes[node] = TreeNode{Leaf: true, Probability: probability}
		return node
	}

	feature, threshold, ok := b.bestSplit(idx, positives)
	if !ok {
		b.tree.Nodes[node] = TreeNode{Leaf: true, Probability: probability}
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	leftNode := b.grow(left, depth+1)
	rightNode := b.grow(right, depth+1)
	b.tree.Nodes[node] = TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftNode,
		Right:     rightNode,
	}
	return node
}

func (b *treeBuilder) bestSplit(idx []int, positives int) (int, float64, bool) {
	n := float64(len(idx))
	bestImpurity := gini(positives, len(idx)) - 1e-12
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, len(idx))
	for _, feature := range b.rnd.Perm(len(b.x[0]))[:b.mtry] {
		copy(sorted, idx)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})

		leftPositives := 0
		for k := 0; k < len(sorted)-1; k++ {
			leftPositives += b.y[sorted[k]]
			current := b.x[sorted[k]][feature]
			next := b.x[sorted[k+1]][feature]
			if current == next {
				continue
			}
			leftCount := k + 1
			rightCount := len(sorted) - leftCount
			impurity := (float64(leftCount)*gini(leftPositives, leftCount) +
				float64(rightCount)*gini(positives-leftPositives, rightCount)) / n
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = feature
				bestThreshold = (current + next) / 2
				if bestThreshold >= next {
					bestThreshold = current
				}
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(positives int, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(positives) / float64(total)
	return 1 - p*p - (1-p)*(1-p)
}
