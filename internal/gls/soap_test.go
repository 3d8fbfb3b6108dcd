package gls

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
)

func soapTestConfig() config.GLSConfig {
	return config.GLSConfig{
		UID:           "test-uid",
		SenderName:    "AdiBody ES",
		SenderAddress: "Calle Pino Siberia 28",
		SenderCity:    "Sevilla",
		SenderZip:     "41016",
		SenderPhone:   "954981710",
	}
}

func fulfillRequest() domain.FulfillRequest {
	return domain.FulfillRequest{
		OrderID:         "6001",
		OrderName:       "#ES1001",
		CustomerName:    "Maria Garcia",
		Email:           "maria@example.com",
		TotalPrice:      "39.90",
		FinancialStatus: "paid",
		Shipping: domain.Address{
			Address1: "Calle Mayor 1",
			City:     "Madrid",
			Zip:      "28001",
			Phone:    "600000000",
		},
		Items: []domain.FulfillItem{
			{SKU: "SLIP.S.BL", Quantity: 2},
			{SKU: "SLIP.M.NE", Quantity: 1},
		},
	}
}

const soapOKResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <GrabaServiciosResponse xmlns="http://www.asmred.com/">
      <GrabaServiciosResult>
        <Servicios>
          <Envio codbarras="96123456789" uid="x"><Resultado return="0"/></Envio>
        </Servicios>
      </GrabaServiciosResult>
    </GrabaServiciosResponse>
  </soap:Body>
</soap:Envelope>`

const soapErrorResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <GrabaServiciosResponse xmlns="http://www.asmred.com/">
      <GrabaServiciosResult>
        <Servicios>
          <Envio codbarras=""><Resultado return="-33">CP destino incorrecto</Resultado></Envio>
        </Servicios>
      </GrabaServiciosResult>
    </GrabaServiciosResponse>
  </soap:Body>
</soap:Envelope>`

func TestCreateShipment(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		if r.Header.Get("SOAPAction") != soapAction {
			t.Errorf("SOAPAction: got %q", r.Header.Get("SOAPAction"))
		}
		w.Write([]byte(soapOKResponse))
	}))
	defer server.Close()

	client := NewSOAPClient(soapTestConfig()).WithEndpoint(server.URL)
	tracking, err := client.CreateShipment(context.Background(), fulfillRequest())
	if err != nil {
		t.Fatal(err)
	}
	if tracking != "96123456789" {
		t.Errorf("tracking: got %q", tracking)
	}

	for _, want := range []string{
		`uidcliente="test-uid"`,
		"<Servicio>96</Servicio>",
		"<Nombre>AdiBody ES</Nombre>",
		"<Nombre>Maria Garcia</Nombre>",
		`<Referencia tipo="C">#ES1001</Referencia>`,
		"SLIP.S.BLx2, SLIP.M.NEx1",
		"<Reembolso>0</Reembolso>",
	} {
		if !strings.Contains(captured, want) {
			t.Errorf("request missing %q", want)
		}
	}
}

func TestCreateShipmentCashOnDelivery(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		w.Write([]byte(soapOKResponse))
	}))
	defer server.Close()

	req := fulfillRequest()
	req.FinancialStatus = "pending"

	client := NewSOAPClient(soapTestConfig()).WithEndpoint(server.URL)
	if _, err := client.CreateShipment(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(captured, "<Reembolso>39.90</Reembolso>") {
		t.Errorf("unpaid order should carry cash on delivery amount, got: %s", captured)
	}
}

func TestCreateShipmentServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(soapErrorResponse))
	}))
	defer server.Close()

	client := NewSOAPClient(soapTestConfig()).WithEndpoint(server.URL)
	_, err := client.CreateShipment(context.Background(), fulfillRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "-33") {
		t.Errorf("error should carry the service code, got: %v", err)
	}
}

func TestParseShipmentResponseNoTracking(t *testing.T) {
	_, err := parseShipmentResponse([]byte(`<Envelope><Body/></Envelope>`))
	if err == nil {
		t.Fatal("expected error for response without tracking")
	}
}
