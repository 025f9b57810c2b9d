package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// ErrMalformed is returned when a catalog body is not a JSON array of
// product objects.
var ErrMalformed = errors.New("malformed catalog")

// DecodeProducts parses a JSON array of product records. Every field is
// optional; null counts as absent and unknown fields are ignored. A value of
// the wrong type, a negative price, or any non-object element is rejected
// with ErrMalformed.
func DecodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.Wrap(ErrMalformed, "expected array")
	}

	products := []product.Product{}
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product %d", len(products))
		}
		products = append(products, p)
		return nil
	}); err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if d.Next() != jx.Invalid {
		return nil, errors.Wrap(ErrMalformed, "trailing data")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	if d.Next() != jx.Object {
		return p, errors.Wrap(ErrMalformed, "expected object")
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if d.Next() == jx.Null {
			return d.Null()
		}
		switch key {
		case "title":
			return decodeString(d, key, &p.Title)
		case "description":
			return decodeString(d, key, &p.Description)
		case "category":
			return decodeString(d, key, &p.Category)
		case "image":
			return decodeString(d, key, &p.Image)
		case "price":
			price, err := decodePrice(d)
			if err != nil {
				return err
			}
			p.Price = price
			return nil
		default:
			return d.Skip()
		}
	})
	return p, err
}

func decodeString(d *jx.Decoder, key string, dst *string) error {
	if d.Next() != jx.String {
		return errors.Wrapf(ErrMalformed, "field %q: expected string", key)
	}
	v, err := d.Str()
	if err != nil {
		return errors.Wrapf(err, "field %q", key)
	}
	*dst = v
	return nil
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() != jx.Number {
		return decimal.Zero, errors.Wrap(ErrMalformed, `field "price": expected number`)
	}
	raw, err := d.Raw()
	if err != nil {
		return decimal.Zero, errors.Wrap(err, `field "price"`)
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformed, "field \"price\": %v", err)
	}
	if price.IsNegative() {
		return decimal.Zero, errors.Wrap(ErrMalformed, `field "price": negative`)
	}
	return price, nil
}

// EncodeProducts writes products as a JSON array in the same shape that
// DecodeProducts accepts. Empty optional fields are omitted. Prices are
// written exactly, so a listing decodes back to the same amounts.
func EncodeProducts(e *jx.Encoder, products []product.Product) {
	e.ArrStart()
	for _, p := range products {
		encodeProduct(e, p, false, encodeExact)
	}
	e.ArrEnd()
}

// EncodeProduct writes a single product for display. withID adds the
// load-time identifier, which is only meaningful to storefront clients.
// The price is rounded to cents.
func EncodeProduct(e *jx.Encoder, p product.Product, withID bool) {
	encodeProduct(e, p, withID, EncodeMoney)
}

func encodeProduct(e *jx.Encoder, p product.Product, withID bool, price func(*jx.Encoder, decimal.Decimal)) {
	e.ObjStart()
	if withID {
		e.FieldStart("id")
		e.Str(p.ID)
	}
	e.FieldStart("title")
	e.Str(p.Title)
	if p.Description != "" {
		e.FieldStart("description")
		e.Str(p.Description)
	}
	e.FieldStart("price")
	price(e, p.Price)
	if p.Category != "" {
		e.FieldStart("category")
		e.Str(p.Category)
	}
	if p.Image != "" {
		e.FieldStart("image")
		e.Str(p.Image)
	}
	e.ObjEnd()
}

// EncodeMoney writes an amount as a JSON number with two decimal places.
func EncodeMoney(e *jx.Encoder, amount decimal.Decimal) {
	e.Num(jx.Num(amount.StringFixed(2)))
}

func encodeExact(e *jx.Encoder, amount decimal.Decimal) {
	e.Num(jx.Num(amount.String()))
}
