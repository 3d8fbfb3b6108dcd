// internal/gls/soap.go
package gls

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
)

const (
	soapAction   = "http://www.asmred.com/GrabaServicios"
	soapNS       = "http://www.asmred.com/"
	soapEnvNS    = "http://www.w3.org/2003/05/soap-envelope"
	serviceCode  = "96" // Euro Business Parcel
	scheduleCode = "18"
)

// SOAPClient creates shipments through the GLS ASM b2b web service.
type SOAPClient struct {
	httpClient *http.Client
	endpoint   string
	uid        string
	sender     config.GLSConfig
}

func NewSOAPClient(cfg config.GLSConfig) *SOAPClient {
	return &SOAPClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   cfg.SOAPEndpoint,
		uid:        cfg.UID,
		sender:     cfg,
	}
}

// WithHTTPClient replaces the HTTP client, for tests.
func (c *SOAPClient) WithHTTPClient(hc *http.Client) *SOAPClient {
	c.httpClient = hc
	return c
}

// WithEndpoint points the client at a different b2b endpoint, for tests.
func (c *SOAPClient) WithEndpoint(endpoint string) *SOAPClient {
	c.endpoint = endpoint
	return c
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap12:Envelope"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	XSD     string   `xml:"xmlns:xsd,attr"`
	SOAP12  string   `xml:"xmlns:soap12,attr"`
	Body    soapBody `xml:"soap12:Body"`
}

type soapBody struct {
	GrabaServicios grabaServicios `xml:"GrabaServicios"`
}

type grabaServicios struct {
	XMLNS string     `xml:"xmlns,attr"`
	DocIn serviceDoc `xml:"docIn>Servicios"`
}

type serviceDoc struct {
	XMLNS     string      `xml:"xmlns,attr"`
	UIDClient string      `xml:"uidcliente,attr"`
	Envio     envioRecord `xml:"Envio"`
}

type envioRecord struct {
	Fecha         string        `xml:"Fecha"`
	Portes        string        `xml:"Portes"`
	Servicio      string        `xml:"Servicio"`
	Horario       string        `xml:"Horario"`
	Bultos        int           `xml:"Bultos"`
	Peso          int           `xml:"Peso"`
	Retorno       int           `xml:"Retorno"`
	Importes      envioImportes `xml:"Importes"`
	Remite        envioParty    `xml:"Remite"`
	Destinatario  envioParty    `xml:"Destinatario"`
	Referencias   envioRefs     `xml:"Referencias"`
	Observaciones string        `xml:"Observaciones"`
}

type envioImportes struct {
	Debidos   string `xml:"Debidos"`
	Reembolso string `xml:"Reembolso"`
}

type envioParty struct {
	Nombre    string `xml:"Nombre"`
	Direccion string `xml:"Direccion"`
	Poblacion string `xml:"Poblacion"`
	Pais      string `xml:"Pais"`
	CP        string `xml:"CP"`
	Telefono  string `xml:"Telefono"`
	Email     string `xml:"Email,omitempty"`
}

type envioRefs struct {
	Referencia []envioRef `xml:"Referencia"`
}

type envioRef struct {
	Tipo  string `xml:"tipo,attr"`
	Value string `xml:",chardata"`
}

// CreateShipment registers a consignment with GLS and returns its tracking
// number (the codbarras the service assigns).
func (c *SOAPClient) CreateShipment(ctx context.Context, req domain.FulfillRequest) (string, error) {
	envelope := soapEnvelope{
		XSI:    "http://www.w3.org/2001/XMLSchema-instance",
		XSD:    "http://www.w3.org/2001/XMLSchema",
		SOAP12: soapEnvNS,
		Body: soapBody{
			GrabaServicios: grabaServicios{
				XMLNS: soapNS,
				DocIn: serviceDoc{
					XMLNS:     soapNS,
					UIDClient: c.uid,
					Envio:     c.buildEnvio(req),
				},
			},
		},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal shipment envelope: %w", err)
	}
	body := append([]byte(xml.Header), payload...)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	httpReq.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gls soap request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("gls soap returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	tracking, err := parseShipmentResponse(respBody)
	if err != nil {
		return "", err
	}
	log.Info().Str("order", req.OrderName).Str("tracking", tracking).Msg("gls: shipment created")
	return tracking, nil
}

func (c *SOAPClient) buildEnvio(req domain.FulfillRequest) envioRecord {
	reembolso := "0"
	if !strings.EqualFold(req.FinancialStatus, "paid") && req.TotalPrice != "" {
		reembolso = req.TotalPrice
	}

	observations := strings.TrimSpace(req.Observations)
	if observations == "" {
		parts := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			parts = append(parts, fmt.Sprintf("%sx%d", item.SKU, item.Quantity))
		}
		observations = strings.Join(parts, ", ")
	}

	// The Albaran is the order name without its platform decorations; the
	// warehouse matches it against paper delivery notes.
	albaran := strings.TrimPrefix(req.OrderName, "#ES")
	albaran = strings.TrimPrefix(albaran, "#")

	return envioRecord{
		Fecha:    time.Now().Format(extranetDateLayout),
		Portes:   "P",
		Servicio: serviceCode,
		Horario:  scheduleCode,
		Bultos:   1,
		Peso:     1,
		Retorno:  0,
		Importes: envioImportes{
			Debidos:   "0",
			Reembolso: reembolso,
		},
		Remite: envioParty{
			Nombre:    c.sender.SenderName,
			Direccion: c.sender.SenderAddress,
			Poblacion: c.sender.SenderCity,
			Pais:      "34",
			CP:        c.sender.SenderZip,
			Telefono:  c.sender.SenderPhone,
		},
		Destinatario: envioParty{
			Nombre:    req.CustomerName,
			Direccion: strings.TrimSpace(req.Shipping.Address1 + " " + req.Shipping.Address2),
			Poblacion: req.Shipping.City,
			Pais:      "34",
			CP:        req.Shipping.Zip,
			Telefono:  req.Shipping.Phone,
			Email:     req.Email,
		},
		Referencias: envioRefs{
			Referencia: []envioRef{{Tipo: "C", Value: req.OrderName}},
		},
		Observaciones: fmt.Sprintf("%s - %s", albaran, observations),
	}
}

// parseShipmentResponse walks the SOAP response for the assigned barcode.
// Errors come back as a Resultado element whose return attribute is nonzero.
func parseShipmentResponse(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	var tracking, errCode string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse shipment response: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Envio":
			for _, attr := range start.Attr {
				if attr.Name.Local == "codbarras" && attr.Value != "" {
					tracking = attr.Value
				}
			}
		case "Resultado":
			for _, attr := range start.Attr {
				if attr.Name.Local == "return" && attr.Value != "0" {
					errCode = attr.Value
				}
			}
		}
	}
	if errCode != "" {
		return "", fmt.Errorf("gls rejected shipment with code %s", errCode)
	}
	if tracking == "" {
		return "", fmt.Errorf("gls response carried no tracking number")
	}
	return tracking, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
