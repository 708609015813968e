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
	promoStandardsWSVersion = "2.0.0"

	promoStandardsProdEndpoint = "https://ws.sanmar.com:8080/promostandards/InventoryServiceBindingV2final"
	promoStandardsTestEndpoint = "https://ws-edev.sanmar.com:8080/promostandards/InventoryServiceBindingV2final"
)

// PromoStandardsClient queries the PromoStandards GetInventoryLevels
// service (Inventory 2.0.0) and maps the typed response field-by-field
// into canonical rows: location id → warehouseId, location name →
// warehouse, location quantity → qty.
type PromoStandardsClient struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
	lastDiag   Diagnostics
}

// NewPromoStandardsClient builds the client from facade options.
func NewPromoStandardsClient(opts Options) *PromoStandardsClient {
	endpoint := opts.PromoStandardsEndpoint
	if endpoint == "" {
		endpoint = promoStandardsProdEndpoint
		if opts.UseTest {
			endpoint = promoStandardsTestEndpoint
		}
	}
	return &PromoStandardsClient{
		endpoint:   endpoint,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: opts.httpClient(),
		logger:     opts.logger(),
	}
}

type psRequestEnvelope struct {
	XMLName xml.Name      `xml:"soapenv:Envelope"`
	SoapNS  string        `xml:"xmlns:soapenv,attr"`
	InvNS   string        `xml:"xmlns:ns,attr"`
	Body    psRequestBody `xml:"soapenv:Body"`
}

type psRequestBody struct {
	Request psInventoryRequest `xml:"ns:GetInventoryLevelsRequest"`
}

type psInventoryRequest struct {
	WSVersion string `xml:"ns:wsVersion"`
	ID        string `xml:"ns:id"`
	Password  string `xml:"ns:password"`
	ProductID string `xml:"ns:productId"`
}

type psResponseEnvelope struct {
	Body struct {
		Fault *soapFault `xml:"Fault"`
		Reply struct {
			Inventory    psInventory `xml:"Inventory"`
			ErrorMessage struct {
				Description string `xml:"description"`
			} `xml:"ErrorMessage"`
		} `xml:"GetInventoryLevelsResponse"`
	} `xml:"Body"`
}

func (e *psResponseEnvelope) fault() *soapFault { return e.Body.Fault }

type psInventory struct {
	ProductID string   `xml:"productId"`
	Parts     []psPart `xml:"PartInventoryArray>PartInventory"`
}

type psPart struct {
	PartID            string       `xml:"partId"`
	PartColor         string       `xml:"partColor"`
	LabelSize         string       `xml:"labelSize"`
	PartDescription   string       `xml:"partDescription"`
	QuantityAvailable psQuantity   `xml:"quantityAvailable>Quantity"`
	Locations         []psLocation `xml:"InventoryLocationArray>InventoryLocation"`
}

type psQuantity struct {
	UOM   string `xml:"uom"`
	Value string `xml:"value"`
}

type psLocation struct {
	ID       string     `xml:"inventoryLocationId"`
	Name     string     `xml:"inventoryLocationName"`
	Quantity psQuantity `xml:"inventoryLocationQuantity>Quantity"`
}

// Fetch retrieves inventory levels for a product id. A response with zero
// usable (warehouse, qty) pairs is not an error; it yields empty rows.
func (c *PromoStandardsClient) Fetch(ctx context.Context, productID string) core.Envelope {
	reqEnv := psRequestEnvelope{
		SoapNS: "http://schemas.xmlsoap.org/soap/envelope/",
		InvNS:  "http://www.promostandards.org/WSDL/Inventory/2.0.0/",
		Body: psRequestBody{Request: psInventoryRequest{
			WSVersion: promoStandardsWSVersion,
			ID:        c.username,
			Password:  c.password,
			ProductID: productID,
		}},
	}

	var respEnv psResponseEnvelope
	if msg := soapCall(ctx, c.httpClient, c.logger, c.endpoint, "getInventoryLevels", reqEnv, &respEnv, &c.lastDiag); msg != "" {
		return core.ErrorEnvelope(fmt.Sprintf("promostandards inventory for %s: %s", productID, msg))
	}
	if f := respEnv.fault(); f != nil {
		return core.ErrorEnvelope(fmt.Sprintf("promostandards fault for %s: %s", productID, f.FaultString))
	}
	if desc := respEnv.Body.Reply.ErrorMessage.Description; desc != "" {
		return core.ErrorEnvelope(fmt.Sprintf("promostandards error for %s: %s", productID, desc))
	}

	rows := []core.Row{}
	for _, part := range respEnv.Body.Reply.Inventory.Parts {
		var totalAvailable *int
		if total, ok := coerceQty(part.QuantityAvailable.Value); ok {
			totalAvailable = &total
		}
		for _, loc := range part.Locations {
			qty, ok := coerceQty(loc.Quantity.Value)
			if !ok || loc.ID == "" {
				continue
			}
			rows = append(rows, core.Row{
				Style:          productID,
				PartID:         part.PartID,
				Color:          part.PartColor,
				Size:           part.LabelSize,
				Description:    part.PartDescription,
				WarehouseID:    loc.ID,
				Warehouse:      core.WarehouseLabel(loc.Name, loc.ID),
				Qty:            qty,
				TotalAvailable: totalAvailable,
			})
		}
	}
	return core.Envelope{Rows: rows}
}

// Diagnostics returns the last request/response recorded by this client.
func (c *PromoStandardsClient) Diagnostics() Diagnostics { return c.lastDiag }
