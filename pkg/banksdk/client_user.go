package banksdk

import "context"

func (c *Client) GetProfile(ctx context.Context) (UserProfile, error) {
	return execute[UserProfile](ctx, c, EndpointGetProfile, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserProfile, error) {
	return execute[UserProfile](ctx, c, EndpointUpdateProfile, req)
}

func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	_, err := execute[Empty](ctx, c, EndpointChangePassword, req)
	return err
}
