/*
 * gridplot_test.go, part of gomwfn.
 *
 * Copyright 2024 The gomwfn Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package gridplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDividers(Te *testing.T) {
	d, err := Dividers(4, []float64{0, 1}, []float64{2, math.NaN()}, []float64{4})
	require.NoError(Te, err)
	require.Len(Te, d, 5)
	assert.Equal(Te, []float64{0, 1, 2, 3}, d[:4])
	assert.Greater(Te, d[4], 4.0)
	assert.InDelta(Te, 4.0, d[4], 1e-12)

	d, err = Dividers(2, []float64{3, 3})
	require.NoError(Te, err)
	assert.Equal(Te, 2.5, d[0])

	_, err = Dividers(0, []float64{1})
	assert.ErrorContains(Te, err, "at least one bin")
	_, err = Dividers(3, []float64{math.NaN()}, nil)
	assert.ErrorContains(Te, err, "no finite values")
}

func TestNewHistogram(Te *testing.T) {
	vals := []float64{4, 0, 0.5, 1, 3.9, math.NaN(), -1}
	H := NewHistogram([]float64{0, 1, 2, 3, math.Nextafter(4, 5)}, vals)
	assert.Equal(Te, []float64{2, 1, 0, 2}, H.Counts)
	assert.Equal(Te, 5, H.Total)
	assert.Equal(Te, 2, H.Outside)
	assert.Equal(Te, 5.0, H.Sum())
	assert.Equal(Te, 1.0, H.Width())
	//the input is left alone
	assert.Equal(Te, 4.0, vals[0])
}

func TestFile(Te *testing.T) {
	before := make([]float64, 200)
	for i := range before {
		before[i] = math.Sin(float64(i))
	}
	after := before[:80]
	dir := Te.TempDir()
	for _, ext := range []string{"png", "svg"} {
		name := filepath.Join(dir, "esp."+ext)
		require.NoError(Te, File(name, "esp", before, after, 0))
		st, err := os.Stat(name)
		require.NoError(Te, err)
		assert.NotZero(Te, st.Size())
	}
	err := File(filepath.Join(dir, "esp.bmp"), "esp", before, after, 10)
	var e Error
	require.ErrorAs(Te, err, &e)
	assert.Contains(Te, e.Error(), "unsupported image format bmp")
	assert.Error(Te, File(filepath.Join(dir, "x.png"), "esp", nil, nil, 10))
}
