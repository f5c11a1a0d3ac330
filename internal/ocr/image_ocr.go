package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/documind/documind/constants"
)

// extractImage shells out to tesseract. The first pass captures the decoded
// text; an optional second pass reruns in TSV mode so the word-level conf
// column can back the score instead of the text heuristic alone.
func (a *Adapter) extractImage(ctx context.Context, path string) (TextResult, error) {
	res := TextResult{
		SourceType: constants.FileTypeImage,
		Method:     "image-ocr",
		Language:   a.cfg.TesseractLang,
	}

	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, a.logger, a.tesseractArgs(path)...)
	if err != nil {
		res.Warnings = append(res.Warnings, string(errb))
		return res, fmt.Errorf("tesseract: %w", err)
	}
	res.Text = Normalize(string(out))

	var wordConf float64
	if a.cfg.EnableTSVConfidence {
		c, err := a.tsvWordConfidence(ctx, path)
		if err != nil {
			// A broken confidence pass degrades the score, not the text.
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			wordConf = c
		}
	}

	res.Confidence = blendConfidence(wordConf, heuristicConfidence(res.Text))
	return res, nil
}

// tesseractArgs builds the shared flag set for both passes, so the TSV rerun
// sees the page under the same segmentation and DPI as the text run.
func (a *Adapter) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", a.cfg.TesseractLang}
	if a.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(a.cfg.PSM))
	}
	if a.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(a.cfg.OEM))
	}
	if a.cfg.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(a.cfg.DPI))
	}
	if a.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", a.cfg.TessdataDir)
	}
	return args
}

// tsvWordConfidence averages the conf column of tesseract's TSV output over
// word rows. Structural rows (page, block, line) carry -1 and are skipped.
func (a *Adapter) tsvWordConfidence(ctx context.Context, path string) (float64, error) {
	args := append(a.tesseractArgs(path), "tsv")
	out, _, err := a.runner.Run(ctx, a.cfg.Tesseract, a.logger, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}

	var sum float64
	var words int
	for i, line := range strings.Split(string(out), "\n") {
		if i == 0 || line == "" { // header, trailing newline
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf := cols[10]
		if conf == "" || conf == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(conf, 64); err == nil {
			sum += v
			words++
		}
	}
	if words == 0 {
		return 0, nil
	}
	// tesseract reports 0..100
	return sum / float64(words) / 100.0, nil
}

// blendConfidence weights tesseract's own word confidence over the text
// heuristic when the TSV pass produced one.
func blendConfidence(word, heuristic float64) float64 {
	conf := heuristic
	if word > 0 {
		conf = 0.7*word + 0.3*heuristic
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
