package gls

import (
	"fmt"
	"testing"
)

const shipmentGrid = `
<table id="gr" class="gv">
  <tr class="gv-header">
    <th>Fecha</th><th>Expedicion</th><th>Referencia</th><th>Destinatario</th><th>Estado</th><th>Retorno</th><th>Observacion</th>
  </tr>
  <tr class="gv-row">
    <td>10/03/2025</td><td>123456789</td><td>#ES1001</td><td>MARIA GARCIA</td><td>ENTREGADO</td><td>CON RETORNO</td><td>SLIP.S.BLx2, SLIP.M.BLx1</td>
  </tr>
  <tr class="gv-alternating">
    <td>11/03/2025</td><td>123456790</td><td>#ES1002</td><td>JUAN LOPEZ</td><td>EN REPARTO</td><td></td><td></td>
  </tr>
</table>`

func TestParseShipments(t *testing.T) {
	html := fmt.Sprintf("<html><body>%s</body></html>", shipmentGrid)

	shipments, err := ParseShipments(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(shipments) != 2 {
		t.Fatalf("expected 2 shipments, got %d", len(shipments))
	}

	first := shipments[0]
	if first.Expedition != "123456789" {
		t.Errorf("expedition: got %q", first.Expedition)
	}
	if first.Reference != "#ES1001" {
		t.Errorf("reference: got %q", first.Reference)
	}
	if first.Return != "CON RETORNO" {
		t.Errorf("return: got %q", first.Return)
	}
	if first.Observation != "SLIP.S.BLx2, SLIP.M.BLx1" {
		t.Errorf("observation: got %q", first.Observation)
	}
	if got := first.Date.Format(extranetDateLayout); got != "10/03/2025" {
		t.Errorf("date: got %s", got)
	}

	if shipments[1].Status != "EN REPARTO" {
		t.Errorf("second row status: got %q", shipments[1].Status)
	}
}

func TestParseShipmentsGridInsideComment(t *testing.T) {
	// Some extranet responses wrap the result grid in an HTML comment.
	html := fmt.Sprintf("<html><body><div>sin resultados</div><!-- %s --></body></html>", shipmentGrid)

	shipments, err := ParseShipments(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(shipments) != 2 {
		t.Fatalf("expected 2 shipments from commented grid, got %d", len(shipments))
	}
	if shipments[0].Recipient != "MARIA GARCIA" {
		t.Errorf("recipient: got %q", shipments[0].Recipient)
	}
}

func TestParseShipmentsNoGrid(t *testing.T) {
	shipments, err := ParseShipments("<html><body><p>sin datos</p></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if len(shipments) != 0 {
		t.Fatalf("expected no shipments, got %d", len(shipments))
	}
}

func TestParseShipmentsSkipsRaggedRows(t *testing.T) {
	html := `<table id="gr">
  <tr class="gv-header"><th>Fecha</th><th>Expedicion</th></tr>
  <tr class="gv-row"><td>10/03/2025</td><td>111</td></tr>
  <tr class="gv-row"><td>colspan footer</td></tr>
</table>`

	shipments, err := ParseShipments(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(shipments) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(shipments))
	}
	if shipments[0].Expedition != "111" {
		t.Errorf("expedition: got %q", shipments[0].Expedition)
	}
}
