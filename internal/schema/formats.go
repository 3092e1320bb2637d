package schema

import (
	"fmt"
	"net"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Custom string formats understood by the vcluster schemas.
const (
	FormatQuantity         = "k8s-quantity"
	FormatCIDR             = "cidr"
	FormatDNS1123Subdomain = "dns1123-subdomain"
)

func registerFormats(c *jsonschema.Compiler) {
	c.RegisterFormat(&jsonschema.Format{Name: FormatQuantity, Validate: validateQuantity})
	c.RegisterFormat(&jsonschema.Format{Name: FormatCIDR, Validate: validateCIDR})
	c.RegisterFormat(&jsonschema.Format{Name: FormatDNS1123Subdomain, Validate: validateDNS1123Subdomain})
}

// Format validators only judge strings; other types are left to the type keyword.

func validateQuantity(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if _, err := resource.ParseQuantity(s); err != nil {
		return err
	}
	return nil
}

func validateCIDR(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if _, _, err := net.ParseCIDR(s); err != nil {
		return fmt.Errorf("invalid CIDR notation")
	}
	return nil
}

func validateDNS1123Subdomain(v any) error {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	if errs := validation.IsDNS1123Subdomain(s); len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
