package assemble

import (
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// StampOptions configures the page number overlay.
type StampOptions struct {
	FontSize     float64 // points
	BottomOffset float64 // points above the bottom edge
}

// StampPlan maps 1-based physical page numbers to the number printed on
// them. The first frontPages pages (title and ToC) get nothing; numbering
// restarts at 1 on the first content page.
func StampPlan(total, frontPages int) map[int]string {
	plan := make(map[int]string)
	for page := frontPages + 1; page <= total; page++ {
		plan[page] = strconv.Itoa(page - frontPages)
	}
	return plan
}

// description is the pdfcpu stamp description: a black Helvetica number
// centered at the bottom of the page.
func (o StampOptions) description() string {
	return fmt.Sprintf(
		"fontname:Helvetica, points:%g, position:bc, offset:0 %g, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		o.FontSize, o.BottomOffset,
	)
}

// stampPages overlays plan onto inFile and writes the result to outFile
// in a single pass.
func stampPages(inFile, outFile string, plan map[int]string, opts StampOptions) error {
	desc := opts.description()

	stamps := make(map[int]*model.Watermark, len(plan))
	for page, text := range plan {
		wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("failed to build page number stamp: %w", err)
		}
		stamps[page] = wm
	}

	if err := api.AddWatermarksMapFile(inFile, outFile, stamps, nil); err != nil {
		return fmt.Errorf("failed to stamp page numbers: %w", err)
	}
	return nil
}
