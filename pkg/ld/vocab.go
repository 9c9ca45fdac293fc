package ld

// Namespace is the base IRI of the BOM vocabulary.
const Namespace = "https://stackbom.dev/ns/bom#"

// Type IRIs name the node categories of a BOM graph.
const (
	// TypeFile is a file shipped in or scanned from an artifact.
	TypeFile = Namespace + "File"

	// TypeComponent is a package, library or application.
	TypeComponent = Namespace + "Component"

	// TypeDependency is a dependency edge reified as a node.
	// Links: from (Component), to (Component), scope.
	TypeDependency = Namespace + "Dependency"

	// TypeAnnotation is a free-form statement about another node.
	TypeAnnotation = Namespace + "Annotation"

	// TypeContainer is a container image.
	TypeContainer = Namespace + "Container"

	// TypeContainerLayer is one layer of a container image.
	TypeContainerLayer = Namespace + "ContainerLayer"

	// TypeProject is the root of a scan. Not a chunk kind on its own; a
	// project node must also carry one of the kind types to be archived.
	TypeProject = Namespace + "Project"
)

// Data IRIs name node attributes.
const (
	PropName      = Namespace + "name"
	PropPath      = Namespace + "path"
	PropVersion   = Namespace + "version"
	PropPURL      = Namespace + "purl"
	PropLicense   = Namespace + "license"
	PropChecksum  = Namespace + "checksum"
	PropDigest    = Namespace + "digest"
	PropSize      = Namespace + "size"
	PropMediaType = Namespace + "mediaType"
	PropScope     = Namespace + "scope"
	PropTags      = Namespace + "tags"

	// Object properties, valued with node references.
	PropFrom      = Namespace + "from"
	PropTo        = Namespace + "to"
	PropDependsOn = Namespace + "dependsOn"
	PropContains  = Namespace + "contains"
	PropLayerOf   = Namespace + "layerOf"
	PropSubject   = Namespace + "subject"

	// Annotation properties.
	PropComment   = Namespace + "comment"
	PropAnnotator = Namespace + "annotator"
	PropCreated   = Namespace + "created"
)

var bomTypes = []Term{
	{Name: "File", IRI: TypeFile},
	{Name: "Component", IRI: TypeComponent},
	{Name: "Dependency", IRI: TypeDependency},
	{Name: "Annotation", IRI: TypeAnnotation},
	{Name: "Container", IRI: TypeContainer},
	{Name: "ContainerLayer", IRI: TypeContainerLayer},
	{Name: "Project", IRI: TypeProject},
}

var bomData = []Term{
	{Name: "name", IRI: PropName},
	{Name: "path", IRI: PropPath},
	{Name: "version", IRI: PropVersion},
	{Name: "purl", IRI: PropPURL},
	{Name: "license", IRI: PropLicense},
	{Name: "checksum", IRI: PropChecksum},
	{Name: "digest", IRI: PropDigest},
	{Name: "size", IRI: PropSize},
	{Name: "mediaType", IRI: PropMediaType},
	{Name: "scope", IRI: PropScope},
	{Name: "tags", IRI: PropTags},
	{Name: "from", IRI: PropFrom},
	{Name: "to", IRI: PropTo},
	{Name: "dependsOn", IRI: PropDependsOn},
	{Name: "contains", IRI: PropContains},
	{Name: "layerOf", IRI: PropLayerOf},
	{Name: "subject", IRI: PropSubject},
	{Name: "comment", IRI: PropComment},
	{Name: "annotator", IRI: PropAnnotator},
	{Name: "created", IRI: PropCreated},
}

// RegisterBOM registers the BOM vocabulary into c.
func RegisterBOM(c *Context) error {
	for _, t := range bomTypes {
		if err := c.Register(t.Name, t.IRI, TypeTerm); err != nil {
			return err
		}
	}
	for _, t := range bomData {
		if err := c.Register(t.Name, t.IRI, DataTerm); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a fresh context holding the BOM vocabulary and no base.
// Each call returns an independent context, so callers may register
// project-specific terms without affecting others.
func Default() *Context {
	c, _ := NewContext("")
	if err := RegisterBOM(c); err != nil {
		panic("ld: BOM vocabulary registration failed: " + err.Error())
	}
	return c
}
