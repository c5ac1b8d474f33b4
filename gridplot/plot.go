/*
 * plot.go, part of gomwfn.
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
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the number of bins used when none is given.
const DefaultBins = 50

var formats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// bars turns H into a gonum histogram plotter.
func bars(H *Histogram, i int) *plotter.Histogram {
	bins := make([]plotter.HistogramBin, len(H.Counts))
	for k, c := range H.Counts {
		bins[k] = plotter.HistogramBin{Min: H.Dividers[k], Max: H.Dividers[k+1], Weight: c}
	}
	return &plotter.Histogram{
		Bins:      bins,
		Width:     H.Width(),
		FillColor: plotutil.Color(i),
		LineStyle: plotter.DefaultLineStyle,
	}
}

// Compare returns a plot with the histograms of property before and
// after filtering, drawn with the same bins. after is drawn over before,
// which holds for a subset since no bin can grow.
func Compare(property string, before, after []float64, nbins int) (*plot.Plot, error) {
	if nbins <= 0 {
		nbins = DefaultBins
	}
	d, err := Dividers(nbins, before, after)
	if err != nil {
		return nil, errDecorate(err, "Compare")
	}
	p := plot.New()
	p.Title.Text = property
	p.X.Label.Text = property
	p.Y.Label.Text = "Points"
	p.Add(plotter.NewGrid())
	for i, set := range []struct {
		label  string
		values []float64
	}{{"before", before}, {"after", after}} {
		h := bars(NewHistogram(d, set.values), i)
		p.Add(h)
		p.Legend.Add(set.label, h)
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes p to name. The format is taken from the extension.
func Save(p *plot.Plot, name string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !formats[ext] {
		return Error{message: "unsupported image format " + ext, filename: name, deco: []string{"Save"}}
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return Error{message: "unable to save plot", filename: name, deco: []string{"Save"}, err: err}
	}
	return nil
}

// File draws the comparison histogram of property and writes it to name.
func File(name, property string, before, after []float64, nbins int) error {
	p, err := Compare(property, before, after, nbins)
	if err != nil {
		return err
	}
	return Save(p, name)
}
