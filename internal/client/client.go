// Package client is a Go client for the auction front end. It performs the
// challenge-response login, keeps the session token and renews it once when a
// call is rejected for an expired session.
package client

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const requestIDHeader = "x-request-id"

type Client struct {
	conn      *grpc.ClientConn
	fe        *pb.FrontEndServiceClient
	serverPub ed25519.PublicKey

	mu     sync.Mutex
	email  string
	priv   ed25519.PrivateKey
	userID int64
	token  models.Token
}

func withRequestID(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if len(md.Get(requestIDHeader)) == 0 {
		md.Set(requestIDHeader, uuid.NewString())
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withRequestID(ctx), method, req, reply, cc, opts...)
}

// Dial connects to the front end at address. serverPub is the trusted server
// key every challenge answer must verify against.
func Dial(address string, serverPub ed25519.PublicKey) (*Client, error) {
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(requestIDInterceptor),
	)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, fe: pb.NewFrontEndServiceClient(conn), serverPub: serverPub}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func transport(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.Unavailable {
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
	return err
}

// Register binds email to publicKey (PKIX DER) and returns the user id.
func (c *Client) Register(ctx context.Context, email string, publicKey []byte) (int64, error) {
	resp, err := c.fe.Register(ctx, &pb.RegisterRequest{Email: email, PublicKey: publicKey})
	if err != nil {
		return 0, transport(err)
	}
	if resp.UserID == nil {
		return 0, pb.ErrorOf(resp.Reason)
	}
	return *resp.UserID, nil
}

// Login registers the key of priv under email, checks the server's identity
// and authenticates. The credentials are kept to renew the session later.
func (c *Client) Login(ctx context.Context, email string, priv ed25519.PrivateKey) (int64, error) {
	der, err := cryptox.MarshalPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return 0, err
	}

	userID, err := c.Register(ctx, email, der)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	nonce, err := common.MakeRandBase64String(common.NonceSize)
	if err != nil {
		return 0, err
	}

	ch, err := c.fe.Challenge(ctx, &pb.ChallengeRequest{UserID: userID, ClientNonce: nonce})
	if err != nil {
		return 0, transport(err)
	}
	if ch.Info == nil {
		return 0, fmt.Errorf("challenge: %w", pb.ErrorOf(ch.Reason))
	}
	if !ed25519.Verify(c.serverPub, []byte(nonce), ch.Info.Signature) {
		return 0, ErrServerIdentityFailed
	}

	sig, err := cryptox.Sign(priv, []byte(ch.Info.ServerNonce))
	if err != nil {
		return 0, err
	}

	auth, err := c.fe.Authenticate(ctx, &pb.AuthenticateRequest{UserID: userID, Signature: sig})
	if err != nil {
		return 0, transport(err)
	}
	if auth.Token == nil {
		return 0, fmt.Errorf("authenticate: %w", pb.ErrorOf(auth.Reason))
	}

	c.mu.Lock()
	c.email, c.priv, c.userID, c.token = email, priv, userID, auth.Token.Model()
	c.mu.Unlock()

	return userID, nil
}

// Session returns the logged in user id and the current token.
func (c *Client) Session() (int64, models.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.token
}

// withSession runs call with the current session and, if the server rejects
// it as unauthorized, logs in again once and retries.
func (c *Client) withSession(ctx context.Context, call func(userID int64, token string) error) error {
	c.mu.Lock()
	email, priv, userID, token := c.email, c.priv, c.userID, c.token.Value
	c.mu.Unlock()

	if priv == nil {
		return ErrNotLoggedIn
	}

	err := call(userID, token)
	if !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}

	if _, lerr := c.Login(ctx, email, priv); lerr != nil {
		return errors.Join(err, lerr)
	}
	userID, tok := c.Session()
	return call(userID, tok.Value)
}

func (c *Client) GetSpec(ctx context.Context, itemID int64) (models.Listing, error) {
	var out models.Listing
	err := c.withSession(ctx, func(userID int64, token string) error {
		resp, err := c.fe.GetSpec(ctx, &pb.GetSpecRequest{UserID: userID, ItemID: itemID, Token: token})
		if err != nil {
			return transport(err)
		}
		if resp.Item == nil {
			return pb.ErrorOf(resp.Reason)
		}
		out = *resp.Item
		return nil
	})
	return out, err
}

func (c *Client) NewAuction(ctx context.Context, item models.SaleItem) (int64, error) {
	var out int64
	err := c.withSession(ctx, func(userID int64, token string) error {
		resp, err := c.fe.NewAuction(ctx, &pb.NewAuctionRequest{UserID: userID, Item: item, Token: token})
		if err != nil {
			return transport(err)
		}
		if resp.ItemID == nil {
			return pb.ErrorOf(resp.Reason)
		}
		out = *resp.ItemID
		return nil
	})
	return out, err
}

func (c *Client) ListItems(ctx context.Context) ([]models.Listing, error) {
	var out []models.Listing
	err := c.withSession(ctx, func(userID int64, token string) error {
		resp, err := c.fe.ListItems(ctx, &pb.ListItemsRequest{UserID: userID, Token: token})
		if err != nil {
			return transport(err)
		}
		if resp.Items == nil {
			return pb.ErrorOf(resp.Reason)
		}
		out = resp.Items
		return nil
	})
	return out, err
}

func (c *Client) CloseAuction(ctx context.Context, itemID int64) (models.Result, error) {
	var out models.Result
	err := c.withSession(ctx, func(userID int64, token string) error {
		resp, err := c.fe.CloseAuction(ctx, &pb.CloseAuctionRequest{UserID: userID, ItemID: itemID, Token: token})
		if err != nil {
			return transport(err)
		}
		if resp.Result == nil {
			return pb.ErrorOf(resp.Reason)
		}
		out = *resp.Result
		return nil
	})
	return out, err
}

func (c *Client) Bid(ctx context.Context, itemID, price int64) error {
	return c.withSession(ctx, func(userID int64, token string) error {
		resp, err := c.fe.Bid(ctx, &pb.BidRequest{UserID: userID, ItemID: itemID, Price: price, Token: token})
		if err != nil {
			return transport(err)
		}
		if !resp.Accepted {
			return pb.ErrorOf(resp.Reason)
		}
		return nil
	})
}

func (c *Client) PrimaryReplicaID(ctx context.Context) (string, error) {
	resp, err := c.fe.GetPrimaryReplicaID(ctx, &emptypb.Empty{})
	if err != nil {
		return "", transport(err)
	}
	return resp.ReplicaID, nil
}
