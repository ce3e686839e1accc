// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned by AUC when only one class is present.
var ErrSingleClass = errors.New("stats: AUC undefined with a single class")

// Accuracy returns the share of predictions (probability >= 0.5) matching labels.
func Accuracy(probs []float64, labels []bool) float64 {
	if len(probs) == 0 {
		return 0
	}
	correct := 0
	for i, p := range probs {
		if (p >= 0.5) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(probs))
}

// AUC returns the area under the ROC curve of scores against labels.
func AUC(scores []float64, labels []bool) (float64, error) {
	pos := 0
	for _, l := range labels {
		if l {
			pos++
		}
	}
	if pos == 0 || pos == len(labels) {
		return math.NaN(), ErrSingleClass
	}

	y := slices.Clone(scores)
	classes := slices.Clone(labels)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// R2 returns the coefficient of determination. A constant target yields 1
// for a perfect fit and 0 otherwise.
func R2(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := stat.Mean(actual, nil)
	var tot float64
	for _, v := range actual {
		tot += (v - mean) * (v - mean)
	}
	if tot == 0 {
		if floats.EqualApprox(predicted, actual, 1e-12) {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// MAE returns the mean absolute error.
func MAE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	diff := make([]float64, len(actual))
	floats.SubTo(diff, predicted, actual)
	for i, d := range diff {
		diff[i] = math.Abs(d)
	}
	return floats.Sum(diff) / float64(len(diff))
}

// RMSE returns the root mean squared error.
func RMSE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	diff := make([]float64, len(actual))
	floats.SubTo(diff, predicted, actual)
	return math.Sqrt(floats.Dot(diff, diff) / float64(len(diff)))
}
