package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sanmar-inventory/internal/backend"
)

const promoStandardsResponse = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <ns2:GetInventoryLevelsResponse xmlns:ns2="http://www.promostandards.org/WSDL/Inventory/2.0.0/">
      <ns2:Inventory>
        <ns2:productId>K420</ns2:productId>
        <ns2:PartInventoryArray>
          <ns2:PartInventory>
            <ns2:partId>K420BK M</ns2:partId>
            <ns2:partColor>Black</ns2:partColor>
            <ns2:labelSize>M</ns2:labelSize>
            <ns2:partDescription>Pique Knit Polo</ns2:partDescription>
            <ns2:quantityAvailable><ns2:Quantity><ns2:uom>EA</ns2:uom><ns2:value>153</ns2:value></ns2:Quantity></ns2:quantityAvailable>
            <ns2:InventoryLocationArray>
              <ns2:InventoryLocation>
                <ns2:inventoryLocationId>1</ns2:inventoryLocationId>
                <ns2:inventoryLocationName>Seattle, WA</ns2:inventoryLocationName>
                <ns2:inventoryLocationQuantity><ns2:Quantity><ns2:uom>EA</ns2:uom><ns2:value>110</ns2:value></ns2:Quantity></ns2:inventoryLocationQuantity>
              </ns2:InventoryLocation>
              <ns2:InventoryLocation>
                <ns2:inventoryLocationId>12</ns2:inventoryLocationId>
                <ns2:inventoryLocationQuantity><ns2:Quantity><ns2:uom>EA</ns2:uom><ns2:value>43</ns2:value></ns2:Quantity></ns2:inventoryLocationQuantity>
              </ns2:InventoryLocation>
              <ns2:InventoryLocation>
                <ns2:inventoryLocationId>31</ns2:inventoryLocationId>
                <ns2:inventoryLocationQuantity><ns2:Quantity><ns2:uom>EA</ns2:uom><ns2:value>pending</ns2:value></ns2:Quantity></ns2:inventoryLocationQuantity>
              </ns2:InventoryLocation>
            </ns2:InventoryLocationArray>
          </ns2:PartInventory>
        </ns2:PartInventoryArray>
      </ns2:Inventory>
    </ns2:GetInventoryLevelsResponse>
  </S:Body>
</S:Envelope>`

func TestPromoStandardsClient_FetchMapsResponse(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(promoStandardsResponse))
	}))
	defer server.Close()

	client := backend.NewPromoStandardsClient(backend.Options{
		Username:               "user",
		Password:               "secret",
		PromoStandardsEndpoint: server.URL,
	})

	env := client.Fetch(context.Background(), "K420")
	if env.Error {
		t.Fatalf("unexpected error envelope: %s", env.Message)
	}
	for _, fragment := range []string{"GetInventoryLevelsRequest", "<ns:productId>K420</ns:productId>", "<ns:id>user</ns:id>"} {
		if !strings.Contains(gotBody, fragment) {
			t.Errorf("request body missing %q:\n%s", fragment, gotBody)
		}
	}

	// Location 31 has a non-numeric quantity and must not produce a row.
	if len(env.Rows) != 2 {
		t.Fatalf("row count = %d, want 2 (%+v)", len(env.Rows), env.Rows)
	}
	first := env.Rows[0]
	if first.Style != "K420" || first.PartID != "K420BK M" || first.Color != "Black" || first.Size != "M" {
		t.Errorf("row identity = %+v", first)
	}
	if first.WarehouseID != "1" || first.Warehouse != "Seattle, WA" || first.Qty != 110 {
		t.Errorf("row warehouse = %s/%s qty %d, want 1/Seattle, WA/110", first.WarehouseID, first.Warehouse, first.Qty)
	}
	if first.TotalAvailable == nil || *first.TotalAvailable != 153 {
		t.Errorf("totalAvailable = %v, want 153", first.TotalAvailable)
	}
	second := env.Rows[1]
	if second.Warehouse != "Warehouse 12" {
		t.Errorf("unnamed location label = %s, want Warehouse 12", second.Warehouse)
	}

	diag := client.Diagnostics()
	if diag.URL != server.URL || diag.Status != 200 || diag.RequestBody == "" || diag.ResponseBody == "" {
		t.Errorf("diagnostics not recorded: %+v", diag)
	}
}

func TestPromoStandardsClient_EmptyInventoryIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>
<ns2:GetInventoryLevelsResponse xmlns:ns2="http://www.promostandards.org/WSDL/Inventory/2.0.0/">
<ns2:Inventory><ns2:productId>K420</ns2:productId></ns2:Inventory>
</ns2:GetInventoryLevelsResponse></S:Body></S:Envelope>`))
	}))
	defer server.Close()

	client := backend.NewPromoStandardsClient(backend.Options{PromoStandardsEndpoint: server.URL})
	env := client.Fetch(context.Background(), "K420")
	if env.Error {
		t.Fatalf("zero usable pairs must not be an error: %s", env.Message)
	}
	if len(env.Rows) != 0 {
		t.Fatalf("expected no rows, got %+v", env.Rows)
	}
}

func TestPromoStandardsClient_SoapFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<?xml version="1.0"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>
<S:Fault><faultcode>S:Server</faultcode><faultstring>Authentication failed</faultstring></S:Fault>
</S:Body></S:Envelope>`))
	}))
	defer server.Close()

	client := backend.NewPromoStandardsClient(backend.Options{PromoStandardsEndpoint: server.URL})
	env := client.Fetch(context.Background(), "K420")
	if !env.Error {
		t.Fatal("expected error envelope for soap fault")
	}
	if !strings.Contains(env.Message, "Authentication failed") {
		t.Errorf("fault message not surfaced: %s", env.Message)
	}
}

func TestPromoStandardsClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	client := backend.NewPromoStandardsClient(backend.Options{PromoStandardsEndpoint: url})
	env := client.Fetch(context.Background(), "K420")
	if !env.Error || env.Message == "" {
		t.Fatalf("expected error envelope with message, got %+v", env)
	}
	if len(env.Rows) != 0 {
		t.Errorf("error envelope carries rows: %+v", env.Rows)
	}
}

const standardResponse = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <ns2:getInventoryQtyForStyleColorSizeResponse xmlns:ns2="http://webservice.integration.sanmar.com/">
      <return>
        <errorOccured>false</errorOccured>
        <message/>
        <response>
          <skus>
            <style>PC61</style>
            <uniqueKey>3232523</uniqueKey>
            <catalogColor>White</catalogColor>
            <size>L</size>
            <productTitle>Essential Tee</productTitle>
            <totalQty>977</totalQty>
            <whse><whseID>1</whseID><whseName>Seattle, WA</whseName><qty>500</qty></whse>
            <whse><whseID>12</whseID><whseName>Cincinnati, OH</whseName><qty>477</qty></whse>
            <whse><whseID>31</whseID><whseName>Phoenix, AZ</whseName><qty></qty></whse>
          </skus>
        </response>
      </return>
    </ns2:getInventoryQtyForStyleColorSizeResponse>
  </S:Body>
</S:Envelope>`

func TestStandardClient_FetchMapsResponse(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(standardResponse))
	}))
	defer server.Close()

	client := backend.NewStandardClient(backend.Options{
		Username:         "user",
		Password:         "secret",
		CustomerNumber:   "12345",
		StandardEndpoint: server.URL,
	})

	env := client.Fetch(context.Background(), "PC61")
	if env.Error {
		t.Fatalf("unexpected error envelope: %s", env.Message)
	}
	for _, fragment := range []string{"<style>PC61</style>", "<sanMarCustomerNumber>12345</sanMarCustomerNumber>"} {
		if !strings.Contains(gotBody, fragment) {
			t.Errorf("request body missing %q:\n%s", fragment, gotBody)
		}
	}

	// The empty qty at warehouse 31 must not produce a row.
	if len(env.Rows) != 2 {
		t.Fatalf("row count = %d, want 2 (%+v)", len(env.Rows), env.Rows)
	}
	first := env.Rows[0]
	if first.Style != "PC61" || first.PartID != "3232523" || first.Color != "White" || first.Size != "L" {
		t.Errorf("row identity = %+v", first)
	}
	if first.WarehouseID != "1" || first.Warehouse != "Seattle, WA" || first.Qty != 500 {
		t.Errorf("row warehouse = %+v", first)
	}
	if first.TotalAvailable == nil || *first.TotalAvailable != 977 {
		t.Errorf("totalAvailable = %v, want 977", first.TotalAvailable)
	}
}

func TestStandardClient_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>
<ns2:getInventoryQtyForStyleColorSizeResponse xmlns:ns2="http://webservice.integration.sanmar.com/">
<return><errorOccured>true</errorOccured><message>Invalid style entered</message></return>
</ns2:getInventoryQtyForStyleColorSizeResponse></S:Body></S:Envelope>`))
	}))
	defer server.Close()

	client := backend.NewStandardClient(backend.Options{StandardEndpoint: server.URL})
	env := client.Fetch(context.Background(), "NOPE")
	if !env.Error {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(env.Message, "Invalid style entered") {
		t.Errorf("service message not surfaced: %s", env.Message)
	}
}
