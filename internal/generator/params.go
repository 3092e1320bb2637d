package generator

import (
	"fmt"
	"net"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

// Backing store choices.
const (
	BackingEmbeddedDatabase = "embedded-database"
	BackingExternalDatabase = "external-database"
	BackingEmbeddedEtcd     = "embedded-etcd"
	BackingDeployedEtcd     = "deployed-etcd"
)

// Defaults applied by Normalize.
const (
	DefaultDistro          = "k3s"
	DefaultPersistenceSize = "5Gi"
	DefaultHAReplicas      = 3
)

// BackingStores lists the accepted backing store names.
var BackingStores = []string{
	BackingEmbeddedDatabase,
	BackingExternalDatabase,
	BackingEmbeddedEtcd,
	BackingDeployedEtcd,
}

// Params are the high-level inputs of a generated configuration.
type Params struct {
	Distro             string `json:"distro,omitempty" jsonschema_description:"Kubernetes distribution of the control plane (k3s, k8s, k0s, ...). Defaults to k3s."`
	BackingStore       string `json:"backingStore,omitempty" jsonschema:"enum=embedded-database,enum=external-database,enum=embedded-etcd,enum=deployed-etcd" jsonschema_description:"Control plane storage backend. Defaults to embedded-database or embedded-etcd when highly available."`
	ExternalDataSource string `json:"externalDataSource,omitempty" jsonschema_description:"Connection string for the external-database backing store."`
	HighAvailability   bool   `json:"highAvailability,omitempty" jsonschema_description:"Run multiple control plane replicas."`
	Replicas           int    `json:"replicas,omitempty" jsonschema:"minimum=1" jsonschema_description:"Control plane replicas. Defaults to 3 when highly available."`
	PersistenceSize    string `json:"persistenceSize,omitempty" jsonschema_description:"Size of the control plane volume claim such as 5Gi."`
	StorageClass       string `json:"storageClass,omitempty" jsonschema_description:"Storage class of the control plane volume claim."`
	ServiceType        string `json:"serviceType,omitempty" jsonschema:"enum=ClusterIP,enum=NodePort,enum=LoadBalancer" jsonschema_description:"Type of the control plane service."`
	IngressHost        string `json:"ingressHost,omitempty" jsonschema_description:"Expose the control plane through an ingress on this host."`
	SyncIngresses      bool   `json:"syncIngresses,omitempty" jsonschema_description:"Sync ingresses from the virtual to the host cluster."`
	SyncNodes          bool   `json:"syncNodes,omitempty" jsonschema_description:"Sync all real nodes from the host cluster."`
	Isolation          bool   `json:"isolation,omitempty" jsonschema_description:"Enable network policy, resource quota and limit range isolation."`
	ServiceCIDR        string `json:"serviceCIDR,omitempty" jsonschema_description:"Service CIDR of the host cluster such as 10.96.0.0/12."`
	ImagePullPolicy    string `json:"imagePullPolicy,omitempty" jsonschema:"enum=Always,enum=IfNotPresent,enum=Never" jsonschema_description:"Image pull policy of the control plane."`
}

// InvalidParamsError reports generation input that cannot produce a valid
// configuration.
type InvalidParamsError struct {
	Field  string
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidParamsError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Normalize fills defaults and checks p against s. It returns a copy; p is
// left untouched.
func Normalize(p Params, s *schema.Schema) (Params, error) {
	p.Distro = strings.ToLower(strings.TrimSpace(p.Distro))
	if p.Distro == "" {
		p.Distro = DefaultDistro
	}
	if !s.HasDistro(p.Distro) {
		names := make([]string, 0)
		for _, d := range s.Distros() {
			names = append(names, d.Name)
		}
		return p, invalid("distro", "%q is not supported by schema %s (supported: %s)",
			p.Distro, s.Version, strings.Join(names, ", "))
	}

	if p.Replicas < 0 {
		return p, invalid("replicas", "must be at least 1, got %d", p.Replicas)
	}
	if p.Replicas > 1 {
		p.HighAvailability = true
	}
	if p.HighAvailability {
		if p.Replicas == 0 {
			p.Replicas = DefaultHAReplicas
		}
		if p.Replicas < 2 {
			return p, invalid("replicas", "high availability needs at least 2 replicas, got %d", p.Replicas)
		}
	}

	p.BackingStore = strings.ToLower(strings.TrimSpace(p.BackingStore))
	if p.BackingStore == "" {
		p.BackingStore = BackingEmbeddedDatabase
		if p.HighAvailability {
			p.BackingStore = BackingEmbeddedEtcd
		}
	}
	if !slices.Contains(BackingStores, p.BackingStore) {
		return p, invalid("backingStore", "%q is not one of %s", p.BackingStore, strings.Join(BackingStores, ", "))
	}
	if p.HighAvailability && p.BackingStore == BackingEmbeddedDatabase {
		return p, invalid("backingStore", "%s cannot be used with high availability", BackingEmbeddedDatabase)
	}
	if p.BackingStore == BackingExternalDatabase && strings.TrimSpace(p.ExternalDataSource) == "" {
		return p, invalid("externalDataSource", "required when backingStore is %s", BackingExternalDatabase)
	}
	if p.BackingStore != BackingExternalDatabase && p.ExternalDataSource != "" {
		return p, invalid("externalDataSource", "only valid with backingStore %s", BackingExternalDatabase)
	}

	if p.PersistenceSize == "" {
		p.PersistenceSize = DefaultPersistenceSize
	}
	q, err := resource.ParseQuantity(p.PersistenceSize)
	if err != nil {
		return p, invalid("persistenceSize", "%q is not a valid quantity", p.PersistenceSize)
	}
	p.PersistenceSize = q.String()

	if p.ServiceType != "" {
		if f := s.Lookup("controlPlane.service.spec.type"); f != nil && !slices.Contains(f.Enum, any(p.ServiceType)) {
			return p, invalid("serviceType", "%q is not one of %v", p.ServiceType, f.Enum)
		}
	}

	if p.ImagePullPolicy != "" {
		switch corev1.PullPolicy(p.ImagePullPolicy) {
		case corev1.PullAlways, corev1.PullIfNotPresent, corev1.PullNever:
		default:
			return p, invalid("imagePullPolicy", "%q is not one of %s, %s, %s",
				p.ImagePullPolicy, corev1.PullAlways, corev1.PullIfNotPresent, corev1.PullNever)
		}
	}

	if p.IngressHost != "" {
		if errs := validation.IsDNS1123Subdomain(p.IngressHost); len(errs) > 0 {
			return p, invalid("ingressHost", "%s", strings.Join(errs, "; "))
		}
	}

	if p.ServiceCIDR != "" {
		if _, _, err := net.ParseCIDR(p.ServiceCIDR); err != nil {
			return p, invalid("serviceCIDR", "%q is not a CIDR", p.ServiceCIDR)
		}
	}

	return p, nil
}
