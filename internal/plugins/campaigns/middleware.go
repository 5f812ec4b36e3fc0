package campaigns

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/apperror"
)

const campaignContextKey = "campaign_context"

// CampaignContext holds the resolved campaign and the requesting user's
// role in it.
type CampaignContext struct {
	Campaign   *Campaign
	MemberRole Role
}

// RequireCampaignAccess resolves the campaign from the :campaign path
// parameter, checks the caller may view it and upcasts it: the loaded
// *Campaign replaces the raw ID under the "campaign" key, so templates
// reading the route match get the entity.
//
// Must be applied after auth.LoadSession.
func RequireCampaignAccess(service CampaignService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			campaignID := c.Param(EntityTypeID)
			if campaignID == "" {
				return apperror.NewBadRequest("campaign ID is required")
			}

			cc, err := resolveCampaign(c, service, campaignID)
			if err != nil {
				return err
			}

			c.Set(EntityTypeID, cc.Campaign)
			c.Set(campaignContextKey, cc)
			return next(c)
		}
	}
}

// resolveCampaign loads a campaign and the caller's role, failing with 401
// for anonymous callers and 403 for non-members.
func resolveCampaign(c echo.Context, service CampaignService, campaignID string) (*CampaignContext, error) {
	ctx := c.Request().Context()
	acct := access.AccountFrom(ctx)

	campaign, err := service.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if !campaign.Access(ctx, access.OpView, acct).IsAllowed() {
		if acct.IsAnonymous() {
			return nil, apperror.NewUnauthorized("authentication required")
		}
		return nil, apperror.NewForbidden("you are not a member of this campaign")
	}

	role, err := RoleOf(ctx, service, campaignID, acct)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &CampaignContext{Campaign: campaign, MemberRole: role}, nil
}

// RequireRole rejects callers whose campaign role is below minRole. Must be
// applied after RequireCampaignAccess.
func RequireRole(minRole Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := GetCampaignContext(c)
			if cc == nil {
				return apperror.NewMissingContext()
			}
			if cc.MemberRole < minRole {
				return apperror.NewForbidden("insufficient permissions")
			}
			return next(c)
		}
	}
}

// GetCampaignContext returns the context stored by RequireCampaignAccess,
// or nil.
func GetCampaignContext(c echo.Context) *CampaignContext {
	cc, _ := c.Get(campaignContextKey).(*CampaignContext)
	return cc
}
