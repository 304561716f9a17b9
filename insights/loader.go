package insights

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names expected in the source workbook.
const (
	sheetOrders     = "pedido"
	sheetDeliveries = "entregado"
	sheetCustomers  = "clientes"
)

// LoadTables fetches the workbook behind source (a file path or an http(s)
// URL) and parses the three sheets into validated record sets. Any schema or
// parse problem fails the whole load with a DataSourceError; there is no
// partial result.
func LoadTables(source string, client *http.Client) (*Tables, error) {
	data, err := fetchSource(source, client)
	if err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, sourceErrf(err, "unreadable workbook %s", source)
	}
	defer workbook.Close()

	orderRows, err := sheetRows(workbook, sheetOrders)
	if err != nil {
		return nil, err
	}
	deliveryRows, err := sheetRows(workbook, sheetDeliveries)
	if err != nil {
		return nil, err
	}
	customerRows, err := sheetRows(workbook, sheetCustomers)
	if err != nil {
		return nil, err
	}

	tables := &Tables{}
	if tables.Orders, err = parseOrders(orderRows); err != nil {
		return nil, err
	}
	if tables.Deliveries, err = parseDeliveries(deliveryRows); err != nil {
		return nil, err
	}
	if tables.Customers, err = parseCustomers(customerRows); err != nil {
		return nil, err
	}
	return tables, nil
}

func fetchSource(source string, client *http.Client) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(source)
		if err != nil {
			return nil, sourceErrf(err, "fetch %s", source)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, sourceErrf(nil, "fetch %s: unexpected status %s", source, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, sourceErrf(err, "fetch %s", source)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, sourceErrf(err, "read %s", source)
	}
	return data, nil
}

func sheetRows(workbook *excelize.File, name string) ([][]string, error) {
	index, err := workbook.GetSheetIndex(name)
	if err != nil || index < 0 {
		return nil, sourceErrf(nil, "missing sheet %q", name)
	}
	rows, err := workbook.GetRows(name)
	if err != nil {
		return nil, sourceErrf(err, "read sheet %q", name)
	}
	if len(rows) == 0 {
		return nil, sourceErrf(nil, "sheet %q has no header row", name)
	}
	return rows, nil
}

func parseOrders(rows [][]string) ([]OrderRecord, error) {
	cols := normalizeHeaders(rows[0])
	customerIdx, err := requireColumn(sheetOrders, cols, "codigo_cliente")
	if err != nil {
		return nil, err
	}
	productIdx, err := requireColumn(sheetOrders, cols, "producto")
	if err != nil {
		return nil, err
	}
	codeIdx, err := requireColumn(sheetOrders, cols, "codigo_producto")
	if err != nil {
		return nil, err
	}
	quantityIdx, err := requireColumn(sheetOrders, cols, "cantidad")
	if err != nil {
		return nil, err
	}
	priceIdx, err := requireColumn(sheetOrders, cols, "precio_unitario")
	if err != nil {
		return nil, err
	}
	dateIdx, err := requireColumn(sheetOrders, cols, "fecha_pedido")
	if err != nil {
		return nil, err
	}

	orders := make([]OrderRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		line := i + 2

		customerID := getValue(row, customerIdx)
		if customerID == "" {
			return nil, sourceErrf(nil, "%s row %d: missing codigo_cliente", sheetOrders, line)
		}
		quantity, err := parseQuantity(getValue(row, quantityIdx))
		if err != nil {
			return nil, sourceErrf(err, "%s row %d: cantidad", sheetOrders, line)
		}
		price, err := parsePrice(getValue(row, priceIdx))
		if err != nil {
			return nil, sourceErrf(err, "%s row %d: precio_unitario", sheetOrders, line)
		}
		orderDate, err := parseDate(getValue(row, dateIdx))
		if err != nil {
			return nil, sourceErrf(err, "%s row %d: fecha_pedido", sheetOrders, line)
		}

		orders = append(orders, OrderRecord{
			CustomerID:  customerID,
			Product:     getValue(row, productIdx),
			ProductCode: getValue(row, codeIdx),
			Quantity:    quantity,
			UnitPrice:   price,
			OrderDate:   orderDate,
			Period:      periodKey(orderDate),
			Amount:      float64(quantity) * price,
		})
	}
	return orders, nil
}

func parseDeliveries(rows [][]string) ([]DeliveryRecord, error) {
	cols := normalizeHeaders(rows[0])
	customerIdx, err := requireColumn(sheetDeliveries, cols, "codigo_cliente")
	if err != nil {
		return nil, err
	}
	dateIdx, err := requireColumn(sheetDeliveries, cols, "fecha_entrega")
	if err != nil {
		return nil, err
	}

	deliveries := make([]DeliveryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		line := i + 2

		customerID := getValue(row, customerIdx)
		if customerID == "" {
			return nil, sourceErrf(nil, "%s row %d: missing codigo_cliente", sheetDeliveries, line)
		}
		deliveryDate, err := parseDate(getValue(row, dateIdx))
		if err != nil {
			return nil, sourceErrf(err, "%s row %d: fecha_entrega", sheetDeliveries, line)
		}

		deliveries = append(deliveries, DeliveryRecord{
			CustomerID:   customerID,
			DeliveryDate: deliveryDate,
			Period:       periodKey(deliveryDate),
		})
	}
	return deliveries, nil
}

func parseCustomers(rows [][]string) ([]CustomerRecord, error) {
	cols := normalizeHeaders(rows[0])
	required := []string{"codigo_cliente", "nombre", "telefono", "direccion", "tipo_negocio", "zona", "quien_atiende"}
	indexes := make(map[string]int, len(required))
	for _, name := range required {
		idx, err := requireColumn(sheetCustomers, cols, name)
		if err != nil {
			return nil, err
		}
		indexes[name] = idx
	}
	latIdx, hasLat := findColumn(cols, []string{"lat", "latitud"})
	lonIdx, hasLon := findColumn(cols, []string{"lon", "lng", "longitud"})

	customers := make([]CustomerRecord, 0, len(rows)-1)
	seen := map[string]bool{}
	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		line := i + 2

		customerID := getValue(row, indexes["codigo_cliente"])
		if customerID == "" {
			return nil, sourceErrf(nil, "%s row %d: missing codigo_cliente", sheetCustomers, line)
		}
		if seen[customerID] {
			return nil, sourceErrf(nil, "%s row %d: duplicate codigo_cliente %s", sheetCustomers, line, customerID)
		}
		seen[customerID] = true

		customer := CustomerRecord{
			CustomerID:   customerID,
			Name:         getValue(row, indexes["nombre"]),
			Phone:        getValue(row, indexes["telefono"]),
			Address:      cleanAddress(getValue(row, indexes["direccion"])),
			BusinessType: getValue(row, indexes["tipo_negocio"]),
			Zone:         getValue(row, indexes["zona"]),
			Attendant:    getValue(row, indexes["quien_atiende"]),
			Lat:          DefaultLat,
			Lon:          DefaultLon,
		}
		if hasLat && hasLon {
			lat, latErr := strconv.ParseFloat(getValue(row, latIdx), 64)
			lon, lonErr := strconv.ParseFloat(getValue(row, lonIdx), 64)
			if latErr == nil && lonErr == nil {
				customer.Lat = lat
				customer.Lon = lon
			}
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func parseQuantity(value string) (int, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("negative quantity %s", value)
	}
	return int(parsed), nil
}

func parsePrice(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("negative price %s", value)
	}
	return parsed, nil
}

// cleanAddress strips stray double quotes and surrounding whitespace from
// free-text addresses before downstream use.
func cleanAddress(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func requireColumn(sheet string, headers map[string]int, name string) (int, error) {
	if idx, ok := headers[normalizeHeader(name)]; ok {
		return idx, nil
	}
	return -1, sourceErrf(nil, "sheet %q: missing column %q", sheet, name)
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func emptyRow(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
