package generator

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

// Assignment records one value written by Generate.
type Assignment struct {
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value" yaml:"value"`
}

// Generated is the product of Generate. It has not been validated.
type Generated struct {
	Params        Params
	SchemaVersion string
	Document      *document.Document
	Assignments   []Assignment
}

// Generate builds a configuration for p targeting schema s. Parameters are
// normalized first; an *InvalidParamsError is returned for unusable input.
func Generate(p Params, s *schema.Schema) (*Generated, error) {
	p, err := Normalize(p, s)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	b.set(schema.VersionKey, s.Version)

	b.set("controlPlane.distro."+p.Distro+".enabled", true)

	switch p.BackingStore {
	case BackingEmbeddedDatabase:
		b.set("controlPlane.backingStore.database.embedded.enabled", true)
	case BackingExternalDatabase:
		b.set("controlPlane.backingStore.database.external.enabled", true)
		b.set("controlPlane.backingStore.database.external.dataSource", p.ExternalDataSource)
	case BackingEmbeddedEtcd:
		b.set("controlPlane.backingStore.etcd.embedded.enabled", true)
	case BackingDeployedEtcd:
		b.set("controlPlane.backingStore.etcd.deploy.enabled", true)
	}

	if p.HighAvailability {
		b.set("controlPlane.statefulSet.highAvailability.replicas", p.Replicas)
	}
	b.set("controlPlane.statefulSet.persistence.volumeClaim.enabled", true)
	b.set("controlPlane.statefulSet.persistence.volumeClaim.size", p.PersistenceSize)
	if p.StorageClass != "" {
		b.set("controlPlane.statefulSet.persistence.volumeClaim.storageClass", p.StorageClass)
	}
	if p.ImagePullPolicy != "" {
		b.set("controlPlane.statefulSet.imagePullPolicy", p.ImagePullPolicy)
	}
	if p.ServiceType != "" {
		b.set("controlPlane.service.spec.type", p.ServiceType)
	}
	if p.IngressHost != "" {
		b.set("controlPlane.ingress.enabled", true)
		b.set("controlPlane.ingress.host", p.IngressHost)
	}

	if p.SyncIngresses {
		b.set("sync.toHost.ingresses.enabled", true)
	}
	if p.SyncNodes {
		b.set("sync.fromHost.nodes.enabled", true)
		b.set("sync.fromHost.nodes.selector.all", true)
	}

	if p.ServiceCIDR != "" {
		b.set("networking.serviceCIDR", p.ServiceCIDR)
	}

	if p.Isolation {
		b.set("policies.networkPolicy.enabled", true)
		b.set("policies.resourceQuota.enabled", true)
		b.set("policies.limitRange.enabled", true)
		if s.Lookup("policies.podSecurityStandard") != nil {
			b.set("policies.podSecurityStandard", "baseline")
		}
	}

	return &Generated{
		Params:        p,
		SchemaVersion: s.Version,
		Document:      document.New(b.root),
		Assignments:   b.assignments,
	}, nil
}

// builder assembles a mapping tree in insertion order.
type builder struct {
	root        *yaml.Node
	assignments []Assignment
}

func newBuilder() *builder {
	return &builder{root: mappingNode()}
}

func (b *builder) set(path string, value any) {
	p := document.MustParsePath(path)
	node := b.root
	for _, seg := range p[:len(p)-1] {
		node = childMapping(node, seg.Key)
	}
	last := p[len(p)-1].Key
	setScalar(node, last, scalarNode(value))
	b.assignments = append(b.assignments, Assignment{Path: p.String(), Value: value})
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func childMapping(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			return parent.Content[i+1]
		}
	}
	child := mappingNode()
	parent.Content = append(parent.Content, stringNode(key), child)
	return child
}

func setScalar(parent *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			parent.Content[i+1] = value
			return
		}
	}
	parent.Content = append(parent.Content, stringNode(key), value)
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func scalarNode(v any) *yaml.Node {
	switch val := v.(type) {
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}
	case string:
		return stringNode(val)
	default:
		panic("generator: unsupported scalar type")
	}
}
