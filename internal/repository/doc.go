// Package repository holds the pgx-backed stores. The tables they expect:
//
//	users(id text pk, username text unique, email text unique, password_hash bytea,
//	      first_name text, last_name text, date_of_birth date,
//	      created_at timestamptz, updated_at timestamptz)
//	refresh_tokens(id text pk, user_id text fk, token_hash bytea unique,
//	      expires_at timestamptz, revoked boolean default false, created_at timestamptz)
//	workspaces(id text pk, name text, description text, owner_id text fk,
//	      hashed_api_key bytea, hashed_api_secret bytea,
//	      created_at timestamptz, updated_at timestamptz)
//	workspace_user_mapping(id text pk, workspace_id text fk, user_id text fk,
//	      role text check (role in ('owner','editor')), unique(workspace_id, user_id))
//	content(id text pk, name text, title text, bucket text, object_key text,
//	      format text, mime text, size_bytes bigint, checksum bytea,
//	      user_id text fk, workspace_id text fk null, is_available boolean,
//	      purged_at timestamptz null, created_at timestamptz, updated_at timestamptz)
package repository
