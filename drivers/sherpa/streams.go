package sherpa

import (
	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

// serviceDescriptor binds a stream to its backend list operation.
type serviceDescriptor struct {
	Service    string     // SOAP operation name
	ItemsKey   string     // repeated item element under ResponseValue
	CountParam string     // page size parameter name, "" when the service takes none
	List       *listParam // optional typed information-type list

	// Detail, when set, turns the stream into a parent-driven detail stream:
	// the parent service is paged for tokens and one detail call is issued
	// per parent record.
	Detail *detailDescriptor
}

type detailDescriptor struct {
	Service         string
	ParamName       string // detail call parameter, e.g. supplierCode
	ParentField     string // parent record field feeding the parameter
	DedupeParent    bool   // issue at most one call per distinct parent value
	SkipEmptyParent bool   // parent records without the field are dropped
}

func itemInformationTypes() *listParam {
	return &listParam{
		Name: "itemInformationTypes",
		Tag:  "ItemInformationType",
		Values: []string{
			"General", "EanCode", "CustomFields", "Warehouses",
			"ItemSuppliers", "ItemAssemblies", "ItemPurchases",
		},
	}
}

func orderInformationTypes() *listParam {
	return &listParam{
		Name:   "orderInformationTypes",
		Tag:    "OrderInformationType",
		Values: []string{"General", "OrderLines"},
	}
}

// serviceDescriptors maps stream name to its backend binding.
var serviceDescriptors = map[string]serviceDescriptor{
	"changed_items_information": {
		Service:    "ChangedItemsInformation",
		ItemsKey:   "ItemCodeTokenItemInformation",
		CountParam: "count",
		List:       itemInformationTypes(),
	},
	"changed_stock": {
		Service:    "ChangedStock",
		ItemsKey:   "ItemStockToken",
		CountParam: "maxResult",
	},
	"changed_suppliers": {
		Service:    "ChangedSuppliers",
		ItemsKey:   "ClientCodeToken",
		CountParam: "count",
	},
	"changed_item_suppliers_with_defaults": {
		Service:    "ChangedItemSuppliersWithDefaults",
		ItemsKey:   "SupplierItemCodeToken",
		CountParam: "count",
	},
	"changed_orders_information": {
		Service:    "ChangedOrdersInformation",
		ItemsKey:   "OrderNumberTokenOrderInformation",
		CountParam: "count",
		List:       orderInformationTypes(),
	},
	"changed_purchases": {
		Service:    "ChangedPurchases",
		ItemsKey:   "PurchaseCodeToken",
		CountParam: "count",
	},
	"supplier_info": {
		Service:    "ChangedSuppliers",
		ItemsKey:   "ClientCodeToken",
		CountParam: "count",
		Detail: &detailDescriptor{
			Service:     "SupplierInfo",
			ParamName:   "supplierCode",
			ParentField: "ClientCode",
		},
	},
	"purchase_info": {
		Service:    "ChangedPurchases",
		ItemsKey:   "PurchaseCodeToken",
		CountParam: "count",
		Detail: &detailDescriptor{
			Service:         "PurchaseInfo",
			ParamName:       "purchaseNumber",
			ParentField:     "OrderNumber",
			DedupeParent:    true,
			SkipEmptyParent: true,
		},
	},
}

func tokenStream(name string, primaryKeys ...string) *types.Stream {
	stream := types.NewStream(name, "").
		WithPrimaryKeys(primaryKeys...).
		WithCursorField(constants.TokenCursorField)
	stream.Schema.AddTypes(constants.TokenCursorField, types.Int64)
	return stream
}

func addStrings(stream *types.Stream, fields ...string) *types.Stream {
	for _, field := range fields {
		stream.Schema.AddTypes(field, types.String, types.Null)
	}
	return stream
}

// streamDefinitions builds the static catalog. One entry per Sherpa entity;
// schemas follow the backend's field projection, with nested structures
// carried as JSON strings.
func streamDefinitions() []*types.Stream {
	items := tokenStream("changed_items_information", "ItemCode")
	addStrings(items,
		"ItemCode", "ItemStatus", "ItemType", "Description", "Brand",
		"CostPrice", "Price", "PriceIncl", "VatCode", "StockPeriod",
		"OrderVolume", "Weight", "Length", "Width", "Height",
		"AvgPurchasePrice", "StockInAllWarehouses", "ReservedInAllWarehouses",
		"AvailableStockInAllWarehouses",
		// nested structures, JSON stringified
		"EanCode", "CustomFields", "Warehouses", "ItemSuppliers",
		"ItemAssemblies", "ItemPurchases",
	)
	items.Schema.AddTypes("DateAdded", types.Timestamp, types.Null)
	items.Schema.AddTypes("AutoStockLevel", types.Bool, types.Null)
	items.Schema.AddTypes("Dropship", types.Bool, types.Null)

	stock := tokenStream("changed_stock", "ItemCode", "WarehouseCode")
	addStrings(stock,
		"ItemCode", "WarehouseCode", "Available", "Stock", "Reserved",
		"ItemStatus", "QtyWaitingToReceive", "FirstExpectedQtyWaitingToReceive",
		"AvgPurchasePrice", "CostPrice",
	)
	stock.Schema.AddTypes("ExpectedDate", types.Timestamp, types.Null)
	stock.Schema.AddTypes("FirstExpectedDate", types.Timestamp, types.Null)
	stock.Schema.AddTypes("LastModified", types.Timestamp, types.Null)

	suppliers := tokenStream("changed_suppliers", "ClientCode")
	addStrings(suppliers, "ClientCode", "Active")

	itemSuppliers := tokenStream("changed_item_suppliers_with_defaults", "ItemCode", "ClientCode")
	addStrings(itemSuppliers,
		"SupplierCode", "SupplierItemCode", "ItemCode", "SupplierDescription",
		"SupplierStock", "SupplierPrice", "OrderPeriod", "DeliveryPeriod",
		"Preferred", "AvailableFrom", "SupplierItemStatus", "VatCode",
		"LastModified", "MinPurchaseQty", "SupplierPurchaseQty",
		"SupplierPurchaseQtyMultiplier",
	)

	orders := tokenStream("changed_orders_information", "OrderNumber")
	addStrings(orders,
		"OrderNumber", "OrderStatus", "NumberOfColli", "OrderAmountInclVAT",
		"OrderAmountInclVATInclBackOrderItems", "Paid", "ElectronicPaid",
		"AmountDue", "Margin", "WarehouseCode", "OrderWarning",
		"PaymentMethodCode", "ParcelServiceCode", "ParcelTypeCode",
		"OrderLines",
	)
	orders.Schema.AddTypes("OrderDate", types.Timestamp, types.Null)
	orders.Schema.AddTypes("InvoiceDate", types.Timestamp, types.Null)
	orders.Schema.AddTypes("ShippingDate", types.Timestamp, types.Null)
	orders.Schema.AddTypes("Priority", types.Bool, types.Null)
	orders.Schema.AddTypes("PricesIncl", types.Bool, types.Null)

	purchases := tokenStream("changed_purchases", "PurchaseCode")
	addStrings(purchases, "PurchaseCode", "OrderNumber", "PurchaseStatus", "WarehouseCode")

	supplierInfo := tokenStream("supplier_info", "SupplierCode")
	addStrings(supplierInfo,
		"SupplierCode", "Remarks", "CustomFields", "Name", "Company",
		"Street", "HouseNumber", "PostalCode", "City", "CountryCode",
		"CountryName", "OrderPeriod", "DeliveryPeriod",
		"AutoPreferredItemSupplier",
	)

	purchaseInfo := tokenStream("purchase_info", "PurchaseOrderNumber")
	addStrings(purchaseInfo,
		"SupplierCode", "PurchaseOrderNumber", "PurchaseDate", "PurchaseStatus",
		"Reference", "WarehouseCode", "PurchaseLine",
	)

	return []*types.Stream{
		items, stock, suppliers, itemSuppliers,
		orders, purchases, supplierInfo, purchaseInfo,
	}
}
