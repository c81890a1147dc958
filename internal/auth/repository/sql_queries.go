package repository

const (
	upsertTokenQuery = `INSERT INTO user_tokens (open_id, access_token, refresh_token, expires_at, refresh_expires_at, scope, token_type, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, now())
						ON CONFLICT (open_id) DO UPDATE
						SET access_token = EXCLUDED.access_token,
						    refresh_token = EXCLUDED.refresh_token,
						    expires_at = EXCLUDED.expires_at,
						    refresh_expires_at = EXCLUDED.refresh_expires_at,
						    scope = EXCLUDED.scope,
						    token_type = EXCLUDED.token_type,
						    updated_at = now()
						RETURNING *`

	getTokenQuery = `SELECT open_id, access_token, refresh_token, expires_at, refresh_expires_at, scope, token_type, updated_at
					 FROM user_tokens
					 WHERE open_id = $1`

	listTokensQuery = `SELECT open_id, access_token, refresh_token, expires_at, refresh_expires_at, scope, token_type, updated_at
					   FROM user_tokens
					   ORDER BY open_id`

	deleteTokenQuery = `DELETE FROM user_tokens
						WHERE open_id = $1`
)
