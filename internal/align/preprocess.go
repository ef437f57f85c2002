package align

import "math"

// L2Normalize returns a copy of rows with each row divided by its Euclidean
// norm. Zero-norm rows are copied unchanged. Input rows are never mutated.
func L2Normalize(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		norm := 0.0
		for _, v := range row {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = v / norm
		}
		out[i] = scaled
	}
	return out
}

// ZWhiten returns a copy of rows with every column mean-centered and divided
// by its population standard deviation. Zero-variance columns are centered
// but not scaled. All rows must share one length; ragged input returns nil.
func ZWhiten(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	d := len(rows[0])
	for _, row := range rows {
		if len(row) != d {
			return nil
		}
	}

	n := float64(len(rows))
	mean := make([]float64, d)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, d)
	for _, row := range rows {
		for j, v := range row {
			diff := v - mean[j]
			std[j] += diff * diff
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, d)
		for j, v := range row {
			scaled[j] = (v - mean[j]) / std[j]
		}
		out[i] = scaled
	}
	return out
}
