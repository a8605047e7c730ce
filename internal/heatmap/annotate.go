package heatmap

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/mkrutov/heattrack/internal/track"
)

const (
	dpi      = 72.0
	fontSize = 14.0
	spacing  = 1.2

	infoMargin = 8
)

type annotator struct {
	context    *freetype.Context
	location   *time.Location
	timeFormat string
}

func newAnnotator(fontPath string, loc *time.Location, timeFormat string) (*annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingFull)
	ctx.SetSrc(image.White)

	return &annotator{
		context:    ctx,
		location:   loc,
		timeFormat: timeFormat,
	}, nil
}

// annotate draws a track summary in the bottom-left corner of the image.
func (a *annotator) annotate(img *image.RGBA, samples []track.Sample) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	sum := track.Summarize(samples)

	lines := []string{
		fmt.Sprintf("%s samples", humanize.Comma(int64(sum.Count))),
		fmt.Sprintf("%s - %s",
			sum.Oldest.In(a.location).Format(a.timeFormat),
			sum.Newest.In(a.location).Format(a.timeFormat)),
		fmt.Sprintf("lat %.5f..%.5f, lon %.5f..%.5f", sum.MinLat, sum.MaxLat, sum.MinLon, sum.MaxLon),
		"span " + humanize.RelTime(sum.Oldest, sum.Newest, "", ""),
	}

	lineHeight := a.context.PointToFixed(fontSize * spacing)
	top := img.Bounds().Max.Y - infoMargin - (len(lines)-1)*lineHeight.Round() - int(fontSize)

	pt := freetype.Pt(infoMargin, top+int(fontSize))
	for _, line := range lines {
		if _, err := a.context.DrawString(line, pt); err != nil {
			return fmt.Errorf("drawing info line: %w", err)
		}
		pt.Y += lineHeight
	}

	return nil
}
