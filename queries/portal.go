package queries

// InstancePageQuery is the wrapper pattern templates are rendered in.
const InstancePageQuery = "instancePageQuery"

const instancePageQuery = `
SELECT * WHERE {
  BIND(<ID> AS ?id)
  <PROPERTIES>
}
`

func init() {
	mustRegister(Template{
		Name:        InstancePageQuery,
		Module:      ModulePortal,
		Kind:        KindQuery,
		Description: "Instance page query: binds <ID> and joins the instance properties pattern.",
		Body:        instancePageQuery,
	})
}
