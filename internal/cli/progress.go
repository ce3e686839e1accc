// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// progressBar starts a pb bar on the first update so commands that never
// report progress print nothing.
type progressBar struct {
	out    io.Writer
	prefix string

	once sync.Once
	bar  *pb.ProgressBar
}

func newProgressBar(out io.Writer, prefix string) *progressBar {
	return &progressBar{out: out, prefix: prefix}
}

// update is safe for concurrent use.
func (p *progressBar) update(done, total int) {
	p.once.Do(func() {
		bar := pb.Full.New(total)
		bar.SetWriter(p.out)
		bar.Set("prefix", p.prefix+" ")
		bar.Set(pb.CleanOnFinish, true)
		p.bar = bar.Start()
	})
	p.bar.SetCurrent(int64(done))
	if done >= total {
		p.bar.Finish()
	}
}
