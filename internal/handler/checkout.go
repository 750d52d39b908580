package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/cart"
	"github.com/widyatama/vesti-checkout/internal/domain/order"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// maxBodyBytes caps request body size.
const maxBodyBytes = 1 << 20

// CreateCheckout snapshots the submitted cart into a new pending order.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	d := jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 4096)

	items, err := decodeCreateRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	o, err := h.orders.CreateCheckout(r.Context(), items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// GetCheckout returns the current state of an order.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// QuoteShipping fetches shipping options for a destination and courier.
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	d := jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 4096)

	dest, courier, err := decodeQuoteRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	opts, err := h.orders.Quotes(r.Context(), r.PathValue("id"), dest, courier)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("options", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, opt := range opts {
						encodeOption(e, opt)
					}
				})
			})
		})
	})
}

// UpdateShipping completes the shipping step with an address, the quoted
// destination, and a selected option. The option is verified against a fresh
// quote server-side; the submitted cost is never persisted as-is.
func (h *Handler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	d := jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 4096)

	dest, addr, opt, err := decodeShippingRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	o, err := h.orders.UpdateShipping(r.Context(), r.PathValue("id"), dest, addr, opt)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// InitiatePayment completes the payment step, optionally applying a discount
// code, and returns the order with its payment token.
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	d := jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 4096)

	code, err := decodePaymentRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	o, err := h.orders.InitiatePayment(r.Context(), r.PathValue("id"), code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// PlaceOrder confirms the payment and completes the order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.PlaceOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// CancelCheckout abandons a pending checkout.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func decodeCreateRequest(d *jx.Decoder) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			item, err := decodeLineItem(d)
			if err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeLineItem(d *jx.Decoder) (cart.LineItem, error) {
	var item cart.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product_id":
			item.ProductID, err = d.Str()
		case "name":
			item.Name, err = d.Str()
		case "unit_price":
			item.UnitPrice, err = decodeDecimal(d)
		case "quantity":
			item.Quantity, err = d.Int()
		case "unit_weight":
			item.UnitWeight, err = d.Int()
		default:
			return d.Skip()
		}
		return err
	})
	return item, err
}

func decodeQuoteRequest(d *jx.Decoder) (shipping.Destination, string, error) {
	var (
		dest    shipping.Destination
		courier string
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "destination":
			dest, err = decodeDestination(d)
		case "courier":
			courier, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return dest, courier, err
}

func decodeDestination(d *jx.Decoder) (shipping.Destination, error) {
	var dest shipping.Destination
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			dest.ID, err = d.Str()
		case "subdistrict":
			dest.Subdistrict, err = d.Str()
		case "district":
			dest.District, err = d.Str()
		case "city":
			dest.City, err = d.Str()
		case "province":
			dest.Province, err = d.Str()
		case "postal_code":
			dest.PostalCode, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return dest, err
}

func decodeShippingRequest(d *jx.Decoder) (shipping.Destination, shipping.Address, shipping.Option, error) {
	var (
		dest shipping.Destination
		addr shipping.Address
		opt  shipping.Option
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "destination":
			dest, err = decodeDestination(d)
		case "address":
			addr, err = decodeAddress(d)
		case "option":
			opt, err = decodeOption(d)
		default:
			return d.Skip()
		}
		return err
	})
	return dest, addr, opt, err
}

func decodeAddress(d *jx.Decoder) (shipping.Address, error) {
	var addr shipping.Address
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "full_name":
			addr.FullName, err = d.Str()
		case "address":
			addr.Address, err = d.Str()
		case "subdistrict":
			addr.Subdistrict, err = d.Str()
		case "district":
			addr.District, err = d.Str()
		case "city":
			addr.City, err = d.Str()
		case "province":
			addr.Province, err = d.Str()
		case "postal_code":
			addr.PostalCode, err = d.Str()
		case "phone":
			addr.Phone, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return addr, err
}

func decodeOption(d *jx.Decoder) (shipping.Option, error) {
	var opt shipping.Option
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "courier":
			opt.Courier, err = d.Str()
		case "service":
			opt.Service, err = d.Str()
		case "name":
			opt.Name, err = d.Str()
		case "cost":
			opt.Cost, err = decodeDecimal(d)
		case "eta":
			opt.ETA, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return opt, err
}

func decodePaymentRequest(d *jx.Decoder) (string, error) {
	var code string
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "discount_code" {
			return d.Skip()
		}
		v, err := d.Str()
		code = v
		return err
	})
	return code, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	num, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(string(num))
}

func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

func encodeOption(e *jx.Encoder, opt shipping.Option) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("courier", func(e *jx.Encoder) { e.Str(opt.Courier) })
		e.Field("service", func(e *jx.Encoder) { e.Str(opt.Service) })
		e.Field("name", func(e *jx.Encoder) { e.Str(opt.Name) })
		e.Field("cost", func(e *jx.Encoder) { encodeDecimal(e, opt.Cost) })
		e.Field("eta", func(e *jx.Encoder) { e.Str(opt.ETA) })
	})
}

func encodeAddress(e *jx.Encoder, addr shipping.Address) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("full_name", func(e *jx.Encoder) { e.Str(addr.FullName) })
		e.Field("address", func(e *jx.Encoder) { e.Str(addr.Address) })
		e.Field("subdistrict", func(e *jx.Encoder) { e.Str(addr.Subdistrict) })
		e.Field("district", func(e *jx.Encoder) { e.Str(addr.District) })
		e.Field("city", func(e *jx.Encoder) { e.Str(addr.City) })
		e.Field("province", func(e *jx.Encoder) { e.Str(addr.Province) })
		e.Field("postal_code", func(e *jx.Encoder) { e.Str(addr.PostalCode) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(addr.Phone) })
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product_id", func(e *jx.Encoder) { e.Str(item.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("unit_price", func(e *jx.Encoder) { encodeDecimal(e, item.UnitPrice) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
						e.Field("unit_weight", func(e *jx.Encoder) { e.Int(item.UnitWeight) })
					})
				}
			})
		})
		e.Field("address", func(e *jx.Encoder) { encodeAddress(e, o.Address) })
		if o.ShippingOption != nil {
			e.Field("shipping_option", func(e *jx.Encoder) { encodeOption(e, *o.ShippingOption) })
		}
		if o.Discount != nil {
			d := o.Discount
			e.Field("discount", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("code", func(e *jx.Encoder) { e.Str(d.Code) })
					e.Field("type", func(e *jx.Encoder) { e.Str(string(d.Type)) })
					e.Field("value", func(e *jx.Encoder) { encodeDecimal(e, d.Value) })
				})
			})
		}
		if o.PaymentToken != "" {
			e.Field("payment_token", func(e *jx.Encoder) { e.Str(o.PaymentToken) })
		}
		e.Field("totals", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("subtotal", func(e *jx.Encoder) { encodeDecimal(e, o.Totals.Subtotal) })
				e.Field("discount_amount", func(e *jx.Encoder) { encodeDecimal(e, o.Totals.DiscountAmount) })
				e.Field("shipping_cost", func(e *jx.Encoder) { encodeDecimal(e, o.Totals.ShippingCost) })
				e.Field("total", func(e *jx.Encoder) { encodeDecimal(e, o.Totals.Total) })
			})
		})
	})
}
