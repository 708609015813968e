package backend

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"sanmar-inventory/internal/core"
)

const (
	standardProdEndpoint = "https://ws.sanmar.com:8080/SanMarWebService/SanMarWebServicePort"
	standardTestEndpoint = "https://ws-edev.sanmar.com:8080/SanMarWebService/SanMarWebServicePort"
)

// StandardClient queries the vendor's own web service
// (getInventoryQtyForStyleColorSize) by style code. Unlike the
// PromoStandards service it authenticates with a customer number alongside
// the username/password pair.
type StandardClient struct {
	endpoint       string
	username       string
	password       string
	customerNumber string
	httpClient     *http.Client
	logger         *zap.Logger
	lastDiag       Diagnostics
}

// NewStandardClient builds the client from facade options.
func NewStandardClient(opts Options) *StandardClient {
	endpoint := opts.StandardEndpoint
	if endpoint == "" {
		endpoint = standardProdEndpoint
		if opts.UseTest {
			endpoint = standardTestEndpoint
		}
	}
	return &StandardClient{
		endpoint:       endpoint,
		username:       opts.Username,
		password:       opts.Password,
		customerNumber: opts.CustomerNumber,
		httpClient:     opts.httpClient(),
		logger:         opts.logger(),
	}
}

type stdRequestEnvelope struct {
	XMLName xml.Name       `xml:"soapenv:Envelope"`
	SoapNS  string         `xml:"xmlns:soapenv,attr"`
	WebNS   string         `xml:"xmlns:web,attr"`
	Body    stdRequestBody `xml:"soapenv:Body"`
}

type stdRequestBody struct {
	Request stdInventoryRequest `xml:"web:getInventoryQtyForStyleColorSize"`
}

type stdInventoryRequest struct {
	Style          string `xml:"arg0>style"`
	CustomerNumber string `xml:"arg1>sanMarCustomerNumber"`
	Username       string `xml:"arg1>sanMarUserName"`
	Password       string `xml:"arg1>sanMarUserPassword"`
}

type stdResponseEnvelope struct {
	Body struct {
		Fault *soapFault `xml:"Fault"`
		Reply struct {
			Return stdReturn `xml:"return"`
		} `xml:"getInventoryQtyForStyleColorSizeResponse"`
	} `xml:"Body"`
}

func (e *stdResponseEnvelope) fault() *soapFault { return e.Body.Fault }

type stdReturn struct {
	ErrorOccurred bool     `xml:"errorOccured"`
	Message       string   `xml:"message"`
	SKUs          []stdSKU `xml:"response>skus"`
}

type stdSKU struct {
	Style       string         `xml:"style"`
	UniqueKey   string         `xml:"uniqueKey"`
	Color       string         `xml:"catalogColor"`
	Size        string         `xml:"size"`
	Description string         `xml:"productTitle"`
	TotalQty    string         `xml:"totalQty"`
	Warehouses  []stdWarehouse `xml:"whse"`
}

type stdWarehouse struct {
	ID   string `xml:"whseID"`
	Name string `xml:"whseName"`
	Qty  string `xml:"qty"`
}

// Fetch retrieves per-warehouse quantities for a style. A response with
// zero usable (warehouse, qty) pairs is not an error; it yields empty rows.
func (c *StandardClient) Fetch(ctx context.Context, style string) core.Envelope {
	reqEnv := stdRequestEnvelope{
		SoapNS: "http://schemas.xmlsoap.org/soap/envelope/",
		WebNS:  "http://webservice.integration.sanmar.com/",
		Body: stdRequestBody{Request: stdInventoryRequest{
			Style:          style,
			CustomerNumber: c.customerNumber,
			Username:       c.username,
			Password:       c.password,
		}},
	}

	var respEnv stdResponseEnvelope
	if msg := soapCall(ctx, c.httpClient, c.logger, c.endpoint, "", reqEnv, &respEnv, &c.lastDiag); msg != "" {
		return core.ErrorEnvelope(fmt.Sprintf("standard inventory for %s: %s", style, msg))
	}
	if f := respEnv.fault(); f != nil {
		return core.ErrorEnvelope(fmt.Sprintf("standard service fault for %s: %s", style, f.FaultString))
	}
	ret := respEnv.Body.Reply.Return
	if ret.ErrorOccurred {
		return core.ErrorEnvelope(fmt.Sprintf("standard service error for %s: %s", style, ret.Message))
	}

	rows := []core.Row{}
	for _, sku := range ret.SKUs {
		var totalAvailable *int
		if total, ok := coerceQty(sku.TotalQty); ok {
			totalAvailable = &total
		}
		for _, w := range sku.Warehouses {
			qty, ok := coerceQty(w.Qty)
			if !ok || w.ID == "" {
				continue
			}
			rows = append(rows, core.Row{
				Style:          style,
				PartID:         sku.UniqueKey,
				Color:          sku.Color,
				Size:           sku.Size,
				Description:    sku.Description,
				WarehouseID:    w.ID,
				Warehouse:      core.WarehouseLabel(w.Name, w.ID),
				Qty:            qty,
				TotalAvailable: totalAvailable,
			})
		}
	}
	return core.Envelope{Rows: rows}
}

// Diagnostics returns the last request/response recorded by this client.
func (c *StandardClient) Diagnostics() Diagnostics { return c.lastDiag }
