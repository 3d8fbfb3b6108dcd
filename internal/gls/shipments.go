// internal/gls/shipments.go
package gls

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// extranetDateLayout is the dd/mm/yyyy format the search form and the
// result grid both use.
const extranetDateLayout = "02/01/2006"

// SearchShipments posts the consignment search form for a date range and
// parses the result grid into shipments.
func (c *Client) SearchShipments(ctx context.Context, from, to time.Time) ([]domain.Shipment, error) {
	searchURL := c.baseURL + searchPath

	vs, err := c.fetchFormPage(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("gls search page: %w", err)
	}

	// The search button is an ImageButton, so the postback carries the
	// click coordinates rather than an __EVENTTARGET.
	form := url.Values{
		"__EVENTTARGET":        {""},
		"__EVENTARGUMENT":      {""},
		"__LASTFOCUS":          {""},
		"__VIEWSTATE":          {vs.ViewState},
		"__VIEWSTATEGENERATOR": {vs.ViewStateGenerator},
		"__EVENTVALIDATION":    {vs.EventValidation},
		"fechadesde":           {from.Format(extranetDateLayout)},
		"fechahasta":           {to.Format(extranetDateLayout)},
		"cliente":              {c.clientCode},
		"codplaza_dst":         {"-987"},
		"horario":              {"-987"},
		"servicio":             {"-987"},
		"referencia":           {""},
		"dpto_org":             {""},
		"cpDst":                {""},
		"pais_dst":             {"-987"},
		"entregadas":           {""},
		"noentregadas":         {""},
		"reembolso":            {""},
		"incidencias":          {""},
		"condac":               {""},
		"btBuscar.x":           {"42"},
		"btBuscar.y":           {"3"},
	}

	resp, err := c.postForm(ctx, searchURL, form)
	if err != nil {
		return nil, fmt.Errorf("gls shipment search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("gls shipment search returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	shipments, err := ParseShipments(string(body))
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(shipments)).
		Str("from", from.Format(extranetDateLayout)).
		Str("to", to.Format(extranetDateLayout)).
		Msg("gls: shipments fetched")
	return shipments, nil
}

// ParseShipments extracts the consignment rows from the search result HTML.
// The grid is a table with id "gr"; on some responses the server ships it
// inside an HTML comment, so when the live DOM has no such table the
// comments are scanned too.
func ParseShipments(html string) ([]domain.Shipment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse shipment page: %w", err)
	}

	table := doc.Find("table#gr")
	if table.Length() == 0 {
		commented, ok := tableFromComments(html)
		if !ok {
			log.Warn().Msg("gls: shipment grid not found in response")
			return nil, nil
		}
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(commented))
		if err != nil {
			return nil, fmt.Errorf("parse commented shipment grid: %w", err)
		}
		table = doc.Find("table#gr")
	}

	headers := make([]string, 0)
	table.Find("tr.gv-header th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, normalizeHeader(th.Text()))
	})
	if len(headers) == 0 {
		return nil, nil
	}

	var shipments []domain.Shipment
	table.Find("tr.gv-row, tr.gv-alternating").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != len(headers) {
			return
		}

		row := make(map[string]string, len(headers))
		cells.Each(func(i int, td *goquery.Selection) {
			row[headers[i]] = strings.TrimSpace(td.Text())
		})

		shipment := domain.Shipment{
			Expedition:  row["expedicion"],
			Reference:   row["referencia"],
			Recipient:   row["destinatario"],
			Status:      row["estado"],
			Return:      row["retorno"],
			Observation: row["observacion"],
		}
		if d, err := time.Parse(extranetDateLayout, row["fecha"]); err == nil {
			shipment.Date = d
		}
		shipments = append(shipments, shipment)
	})

	return shipments, nil
}

// tableFromComments digs the "gr" grid out of HTML comments.
func tableFromComments(html string) (string, bool) {
	rest := html
	for {
		start := strings.Index(rest, "<!--")
		if start == -1 {
			return "", false
		}
		end := strings.Index(rest[start+4:], "-->")
		if end == -1 {
			return "", false
		}
		comment := rest[start+4 : start+4+end]
		if strings.Contains(comment, `id="gr"`) {
			tableStart := strings.Index(comment, "<table")
			tableEnd := strings.Index(comment, "</table>")
			if tableStart != -1 && tableEnd != -1 {
				return comment[tableStart : tableEnd+len("</table>")], true
			}
		}
		rest = rest[start+4+end+3:]
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ReturnedSalesEvents converts "CON RETORNO" shipments into sales events by
// parsing the SKU annotations in their observation field. These are units
// that came back into stock through the carrier without any trace on the
// commerce platform.
func ReturnedSalesEvents(shipments []domain.Shipment) []domain.SalesEvent {
	var events []domain.SalesEvent
	for _, s := range shipments {
		if !strings.Contains(strings.ToUpper(s.Return), "CON RETORNO") {
			continue
		}
		for sku, qty := range ParseAnnotations(s.Observation) {
			events = append(events, domain.SalesEvent{
				SKU:      sku,
				Quantity: qty,
				Date:     s.Date,
			})
		}
	}
	return events
}
