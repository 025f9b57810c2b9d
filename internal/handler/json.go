package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	productcodec "github.com/xenking/anomie-storefront/internal/catalog"
	"github.com/xenking/anomie-storefront/internal/domain/cart"
	"github.com/xenking/anomie-storefront/internal/domain/catalog"
	"github.com/xenking/anomie-storefront/internal/session"
)

// maxRequestBody bounds request bodies; every request document is tiny.
const maxRequestBody = 64 << 10

// errBadRequest marks client input that could not be parsed.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return errors.Wrapf(errBadRequest, format, args...)
}

// readBody reads a bounded request body. An empty body is an error.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return nil, badRequest("read body: %v", err)
	}
	if len(data) == 0 {
		return nil, badRequest("empty body")
	}
	return data, nil
}

// decodeObject walks the top-level JSON object in data, calling fn for every
// non-null field. Trailing data is rejected.
func decodeObject(data []byte, fn func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return badRequest("expected JSON object")
	}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if d.Next() == jx.Null {
			return d.Null()
		}
		return fn(d, key)
	}); err != nil {
		if errors.Is(err, errBadRequest) {
			return err
		}
		return badRequest("%v", err)
	}
	if d.Next() != jx.Invalid {
		return badRequest("trailing data")
	}
	return nil
}

func decodeStr(d *jx.Decoder, key string) (string, error) {
	if d.Next() != jx.String {
		return "", badRequest("field %q: expected string", key)
	}
	return d.Str()
}

func decodeInt(d *jx.Decoder, key string) (int, error) {
	if d.Next() != jx.Number {
		return 0, badRequest("field %q: expected integer", key)
	}
	v, err := d.Int()
	if err != nil {
		return 0, badRequest("field %q: %v", key, err)
	}
	return v, nil
}

// decodeView applies the fields present in a view request on top of cur.
func decodeView(data []byte, cur catalog.View) (catalog.View, error) {
	v := cur
	err := decodeObject(data, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "category":
			v.Category, err = decodeStr(d, key)
		case "query":
			v.Query, err = decodeStr(d, key)
		default:
			err = d.Skip()
		}
		return err
	})
	return v, err
}

func decodeAddItem(data []byte) (productID string, err error) {
	err = decodeObject(data, func(d *jx.Decoder, key string) (err error) {
		if key != "productId" {
			return d.Skip()
		}
		productID, err = decodeStr(d, key)
		return err
	})
	if err != nil {
		return "", err
	}
	if productID == "" {
		return "", badRequest("productId is required")
	}
	return productID, nil
}

func decodeChangeItem(data []byte) (delta int, err error) {
	seen := false
	err = decodeObject(data, func(d *jx.Decoder, key string) (err error) {
		if key != "delta" {
			return d.Skip()
		}
		seen = true
		delta, err = decodeInt(d, key)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !seen {
		return 0, badRequest("delta is required")
	}
	return delta, nil
}

// pathIndex parses the {index} path segment.
func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid line index %q", raw)
	}
	return i, nil
}

func encodeCatalog(e *jx.Encoder, snap session.Snapshot) {
	e.ObjStart()
	e.FieldStart("loading")
	e.Bool(snap.Loading)
	e.FieldStart("source")
	if snap.Source == "" {
		e.Null()
	} else {
		e.Str(string(snap.Source))
	}
	e.FieldStart("categories")
	e.ArrStart()
	for _, c := range snap.Categories {
		e.Str(c)
	}
	e.ArrEnd()
	e.FieldStart("activeCategory")
	e.Str(snap.View.Category)
	e.FieldStart("query")
	e.Str(snap.View.Query)
	e.FieldStart("count")
	e.Int(len(snap.Products))
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range snap.Products {
		productcodec.EncodeProduct(e, p, true)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeCart(e *jx.Encoder, c cart.Cart, opened bool) {
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for i, l := range c {
		e.ObjStart()
		e.FieldStart("index")
		e.Int(i)
		e.FieldStart("product")
		productcodec.EncodeProduct(e, l.Product, true)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("total")
		productcodec.EncodeMoney(e, l.Total())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	productcodec.EncodeMoney(e, c.Subtotal())
	e.FieldStart("count")
	e.Int(c.Count())
	e.FieldStart("distinct")
	e.Int(c.Len())
	e.FieldStart("canCheckout")
	e.Bool(c.CanCheckout())
	if opened {
		e.FieldStart("opened")
		e.Bool(true)
	}
	e.ObjEnd()
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
