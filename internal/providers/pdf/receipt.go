package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Donation Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Receipt number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
			text.New(fmt.Sprintf("Revision: %d", data.Revision), props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(34,
		col.New(6).Add(
			text.New(data.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New(data.OrgAddress, props.Text{Top: 5}),
			text.New(data.OrgEmail, props.Text{Top: 14}),
		),
		col.New(6).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold}),
			text.New(data.DonorName, props.Text{Top: 5}),
			text.New(data.DonorAddress, props.Text{Top: 9}),
			text.New(data.DonorEmail, props.Text{Top: 18}),
		),
	)

	m.AddRow(4, line.NewCol(12))

	m.AddRow(10,
		text.NewCol(8, "Donation ("+data.DonationType+")", props.Text{Top: 2}),
		text.NewCol(4, data.AmountDisplay, props.Text{Top: 2, Align: align.Right, Style: fontstyle.Bold}),
	)
	if data.CampaignRef != "" {
		m.AddRow(8,
			text.NewCol(12, "Campaign: "+data.CampaignRef, props.Text{Size: 9}),
		)
	}

	m.AddRow(4, line.NewCol(12))

	if data.TaxExemption {
		label := "This donation is eligible for tax exemption."
		if data.TaxSectionLabel != "" {
			label = fmt.Sprintf("This donation is eligible for tax exemption under %s.", data.TaxSectionLabel)
		}
		m.AddRow(14,
			col.New(12).Add(
				text.New(label, props.Text{Size: 9, Style: fontstyle.Italic}),
				text.New(taxIDLine(data), props.Text{Top: 5, Size: 9}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func taxIDLine(data ReceiptData) string {
	if data.DonorTaxID == "" {
		return ""
	}
	return "Donor tax id: " + data.DonorTaxID
}
