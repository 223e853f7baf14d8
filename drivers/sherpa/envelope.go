package sherpa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

// Param is one named body parameter of a service call; order is preserved on
// the wire, the way the backend documents its operations.
type Param struct {
	Name  string
	Value string
}

// listParam is the optional typed list some services take, e.g.
// itemInformationTypes with repeated ItemInformationType children.
type listParam struct {
	Name   string
	Tag    string
	Values []string
}

func xmlEscape(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}

// buildEnvelope renders the SOAP 1.2 request body. securityCode is always the
// first parameter; the backend rejects calls without it.
func buildEnvelope(service, securityCode string, params []Param, list *listParam) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">` + "\n")
	b.WriteString("  <soap12:Body>\n")
	fmt.Fprintf(&b, "    <tns:%s xmlns:tns=%q>\n", service, constants.SherpaNamespace)
	fmt.Fprintf(&b, "      <tns:securityCode>%s</tns:securityCode>\n", xmlEscape(securityCode))
	for _, param := range params {
		fmt.Fprintf(&b, "      <tns:%s>%s</tns:%s>\n", param.Name, xmlEscape(param.Value), param.Name)
	}
	if list != nil {
		fmt.Fprintf(&b, "      <tns:%s>\n", list.Name)
		for _, value := range list.Values {
			fmt.Fprintf(&b, "        <tns:%s>%s</tns:%s>\n", list.Tag, xmlEscape(value), list.Tag)
		}
		fmt.Fprintf(&b, "      </tns:%s>\n", list.Name)
	}
	fmt.Fprintf(&b, "    </tns:%s>\n", service)
	b.WriteString("  </soap12:Body>\n")
	b.WriteString("</soap12:Envelope>")
	return []byte(b.String())
}

// ServiceResponse is the parsed result element of one service call.
type ServiceResponse struct {
	ResponseTime int64
	Value        any // content of ResponseValue: map, slice or scalar
}

// decodeElement turns one XML element into a string (leaf) or a
// map[string]any (element with children); repeated child names collapse to a
// []any. Namespace prefixes and attributes are dropped, mirroring how the
// backend's responses are consumed.
func decodeElement(decoder *xml.Decoder) (any, error) {
	children := map[string]any{}
	var text strings.Builder
	hasChildren := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of document")
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			hasChildren = true
			child, err := decodeElement(decoder)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			if existing, found := children[name]; found {
				if slice, ok := existing.([]any); ok {
					children[name] = append(slice, child)
				} else {
					children[name] = []any{existing, child}
				}
			} else {
				children[name] = child
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if hasChildren {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

// parseEnvelope walks Envelope > Body > {service}Response > {service}Result.
func parseEnvelope(service string, body []byte) (*ServiceResponse, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	// advance to the document root
	var root any
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse response envelope: %s", err)
		}
		if _, ok := token.(xml.StartElement); ok {
			root, err = decodeElement(decoder)
			if err != nil {
				return nil, fmt.Errorf("failed to parse response envelope: %s", err)
			}
			break
		}
	}

	envelope, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response envelope has no body")
	}
	bodyElem, ok := envelope["Body"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response envelope has no body")
	}
	response, ok := bodyElem[service+"Response"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response has no %sResponse element", service)
	}
	result, ok := response[service+"Result"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response has no %sResult element", service)
	}

	parsed := &ServiceResponse{Value: result["ResponseValue"]}
	if raw, ok := result["ResponseTime"].(string); ok {
		parsed.ResponseTime, _ = strconv.ParseInt(raw, 10, 64)
	}
	return parsed, nil
}

// Items extracts the repeated item elements under key, tolerating the
// single-item case where XML decoding produced a bare map.
func (r *ServiceResponse) Items(key string) []map[string]any {
	value, ok := r.Value.(map[string]any)
	if !ok {
		return nil
	}
	switch items := value[key].(type) {
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{items}
	default:
		return nil
	}
}

func jsonStringify(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

// normalizeItem flattens one raw item into a record: children of the
// *Information wrapper elements are promoted to the top level, any other
// nested structure is carried as a JSON string, and the Token cursor becomes
// an int64 so watermark comparison is numeric.
func normalizeItem(item map[string]any) types.Record {
	record := types.Record{}
	for key, value := range item {
		switch nested := value.(type) {
		case map[string]any:
			if key == "ItemInformation" || key == "OrderInformation" {
				for subKey, subValue := range nested {
					switch subValue.(type) {
					case map[string]any, []any:
						record[subKey] = jsonStringify(subValue)
					default:
						record[subKey] = subValue
					}
				}
				continue
			}
			record[key] = jsonStringify(nested)
		case []any:
			record[key] = jsonStringify(nested)
		default:
			record[key] = value
		}
	}
	if raw, ok := record[constants.TokenCursorField].(string); ok {
		if token, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record[constants.TokenCursorField] = token
		}
	}
	return record
}
