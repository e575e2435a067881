package renewal

import (
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// Context names the parties a renewal email is written for. Any part the data
// does not reach is left empty.
type Context struct {
	BusinessName string `json:"business_name"`
	ClientName   string `json:"client_name"`
	AgencyName   string `json:"insurance_agency_name"`
	AgentName    string `json:"insurance_agent_name"`
}

// ResolveContext walks business → customer → agency → agent. members are the
// agency's memberships; the primary member signs, else the first one.
func ResolveContext(business *model.Business, members []model.AgencyUser) Context {
	var c Context
	if business == nil {
		return c
	}
	c.BusinessName = business.Name

	customer := business.Customer
	if customer == nil {
		return c
	}
	c.ClientName = customer.FullName()

	if customer.Agency == nil {
		return c
	}
	c.AgencyName = customer.Agency.Name

	if agent := signingMember(members); agent != nil && agent.User != nil {
		c.AgentName = agent.User.FullName()
	}
	return c
}

func signingMember(members []model.AgencyUser) *model.AgencyUser {
	for i := range members {
		if members[i].IsPrimary {
			return &members[i]
		}
	}
	if len(members) > 0 {
		return &members[0]
	}
	return nil
}
